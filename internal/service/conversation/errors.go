package conversation

import "errors"

// 错误分类：只有校验失败与持久化失败作为错误返回调用方，
// 协作方不可用一律在管线内降级
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("not found")
	ErrPersistence = errors.New("persistence failed")
)
