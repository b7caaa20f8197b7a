package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"p2pex.com/pkg/logger"
	"p2pex.com/pkg/xerr"
)

// 定义http返回格式
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Field   string      `json:"field,omitempty"`
	Data    interface{} `json:"data"`
}

func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: http.StatusText(http.StatusOK),
		Data:    data,
	})
}

func Fail(c *gin.Context, httpStatus int, code int, message string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// FailFromErr 业务错误码 -> HTTP 状态；校验类错误带上 field 方便前端定位输入框
// 非业务错误不透出内部信息
func FailFromErr(c *gin.Context, err error) {
	code := xerr.CodeOf(err)
	httpStatus := mapCodeToHTTP(code)

	msg := xerr.MapErrMsg(code)
	if httpStatus < http.StatusInternalServerError {
		msg = err.Error()
		var ce *xerr.CodeError
		if errors.As(err, &ce) {
			msg = ce.Msg
		}
	}

	if httpStatus >= http.StatusInternalServerError {
		logger.Error(c, "http error",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("biz_code", code),
			zap.Error(err),
		)
	}

	c.JSON(httpStatus, Response{
		Code:    code,
		Message: msg,
		Field:   xerr.FieldOf(err),
		Data:    nil,
	})
}

func mapCodeToHTTP(code int) int {
	switch code {
	case xerr.RequestParamsError,
		xerr.InvalidAmount,
		xerr.AmountOutOfRange,
		xerr.InvalidListingFields,
		xerr.InvalidPaymentMethod,
		xerr.InvalidProfile:
		return http.StatusBadRequest
	case xerr.RecordNotFound:
		return http.StatusNotFound
	case xerr.WalletUnavailable:
		return http.StatusPreconditionFailed
	case xerr.DirectorySourceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
