package xerr

import (
	"errors"
	"fmt"
)

// 通用错误码
const (
	OK                 = 200
	RequestParamsError = 400
	RecordNotFound     = 404
	ServerCommonError  = 500
	DbError            = 501
)

// 业务错误码：全部是可恢复的，前端按字段展示
const (
	InvalidAmount              = 1001 // 金额缺失/为 0/为负/无法解析
	AmountOutOfRange           = 1002 // 金额不在广告的 [min, max] 区间
	InvalidListingFields       = 1003 // 发布广告字段不合法
	WalletUnavailable          = 1004 // 没有钱包 provider 或未连接
	DirectorySourceUnavailable = 1005 // 远端城市/广告源不可用（只记日志，不透出）
	InvalidPaymentMethod       = 1006 // 支付方式不在广告支持列表中
	InvalidProfile             = 1007 // 个人资料不合法
)

type CodeError struct {
	Code  int    `json:"code"`
	Msg   string `json:"msg"`
	Field string `json:"field,omitempty"` // 出错的表单字段，可为空
}

func (e *CodeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("ErrCode:%d, Field:%s, Msg:%s", e.Code, e.Field, e.Msg)
	}
	return fmt.Sprintf("ErrCode:%d, Msg:%s", e.Code, e.Msg)
}

func (e *CodeError) ErrCode() int { return e.Code }

func New(code int, msg string) error {
	return &CodeError{Code: code, Msg: msg}
}

// NewField 带字段名的错误，用于表单校验
func NewField(code int, field, msg string) error {
	return &CodeError{Code: code, Msg: msg, Field: field}
}

func NewErrCode(code int) error {
	return &CodeError{Code: code, Msg: MapErrMsg(code)}
}

// Wrap 保留错误码，把底层错误拼到消息里
func Wrap(err error, code int, msg string) error {
	if err == nil {
		return nil
	}
	return &CodeError{Code: code, Msg: fmt.Sprintf("%s: %v", msg, err)}
}

// coder 任何能报告错误码的错误都算（例如 trade.RangeError）
type coder interface {
	ErrCode() int
}

// CodeOf 取出错误链上的第一个错误码；非业务错误返回 ServerCommonError
func CodeOf(err error) int {
	if err == nil {
		return OK
	}
	var c coder
	if errors.As(err, &c) {
		return c.ErrCode()
	}
	return ServerCommonError
}

func Is(err error, code int) bool {
	return err != nil && CodeOf(err) == code
}

// FieldOf 取出表单字段名
func FieldOf(err error) string {
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce.Field
	}
	return ""
}

func MapErrMsg(code int) string {
	switch code {
	case ServerCommonError:
		return "server error"
	case RequestParamsError:
		return "invalid request parameters"
	case DbError:
		return "database busy"
	case RecordNotFound:
		return "record not found"
	case InvalidAmount:
		return "please enter a valid amount"
	case AmountOutOfRange:
		return "amount out of range"
	case InvalidListingFields:
		return "invalid listing fields"
	case WalletUnavailable:
		return "please install MetaMask or use TrustWallet DApp browser"
	case DirectorySourceUnavailable:
		return "directory source unavailable"
	case InvalidPaymentMethod:
		return "payment method not supported by this ad"
	case InvalidProfile:
		return "name is required"
	default:
		return "unknown error"
	}
}
