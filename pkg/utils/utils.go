package utils

import (
	crand "crypto/rand"
	"fmt"
	"math/big"
	"math/rand"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/holdno/snowFlakeByGo"

	"github.com/quka-ai/quka-iot/pkg/errors"
	"github.com/quka-ai/quka-iot/pkg/i18n"
)

var (
	// IdWorker 全局唯一id生成器实例
	idWorker *snowFlakeByGo.Worker
)

func SetupIDWorker(clusterID int64) {
	idWorker, _ = snowFlakeByGo.NewWorker(clusterID)
}

func GenUniqID() int64 {
	return idWorker.GetId()
}

func GenUniqIDStr() string {
	return strconv.FormatInt(GenUniqID(), 10)
}

func GenRandomID() string {
	return RandomStr(32)
}

// GenAPIKey returns a random uuid v4, the format channel api keys use.
func GenAPIKey() string {
	return uuid.NewString()
}

const randomSeed = "1234567890qwertyuiopasdfghjklzxcvbnmQWERTYUIOPASDFGHJKLZXCVBNM"

// RandomStr 随机字符串，用于密码等凭证
func RandomStr(l int) string {
	buf := make([]byte, l)
	limit := big.NewInt(int64(len(randomSeed)))
	for i := range buf {
		n, err := crand.Int(crand.Reader, limit)
		if err != nil {
			panic(err)
		}
		buf[i] = randomSeed[n.Int64()]
	}
	return string(buf)
}

// Random 生成随机数
func Random(min, max int) int {
	if min == max {
		return max
	}
	max = max + 1
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	return min + r.Intn(max-min)
}

func BindArgsWithGin(c *gin.Context, req interface{}) error {
	err := c.ShouldBindWith(req, binding.Default(c.Request.Method, c.ContentType()))
	if err != nil {
		return errors.New(fmt.Sprintf("Gin.ShouldBindWith.%s.%s", c.Request.Method, c.Request.URL.Path), i18n.ERROR_INVALIDARGUMENT, err).Code(http.StatusBadRequest)
	}
	return nil
}

var mobileNumberPattern = regexp.MustCompile(`^\d{10}$`)

func IsMobileNumber(s string) bool {
	return mobileNumberPattern.MatchString(s)
}
