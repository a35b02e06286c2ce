package projection

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/quka-ai/quka-iot/pkg/types"
)

const TimestampColumn = "timestamp"

// ToCSV renders one row per entry in timestamp order. Columns are timestamp
// followed by fieldOrder; fields absent from an entry render as empty cells.
func ToCSV(entries []*types.ChannelEntry, fieldOrder []string) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	if err := w.Write(append([]string{TimestampColumn}, fieldOrder...)); err != nil {
		return nil, err
	}

	row := make([]string, len(fieldOrder)+1)
	for _, e := range Chronological(entries) {
		row[0] = FormatTimestamp(e.Timestamp)
		for i, name := range fieldOrder {
			row[i+1] = ""
			if v, ok := e.FieldData.Get(name); ok {
				row[i+1] = FormatValue(v)
			}
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func FormatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
