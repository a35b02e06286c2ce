package types

import "fmt"

type TableName string

func (s TableName) Name() string {
	return fmt.Sprintf("%s%s", TABLE_PREFIX, s)
}

const TABLE_PREFIX = "quka_iot_"

const (
	TABLE_USER          = TableName("user")
	TABLE_CHANNEL       = TableName("channel")
	TABLE_CHANNEL_ENTRY = TableName("channel_entry")
)
