package rxgo

import (
	"errors"
	"fmt"
	"strings"
)

// 标准错误
var (
	// ErrEmpty 序列在没有发射任何值的情况下完成
	ErrEmpty = errors.New("rxgo: no elements in sequence")
	// ErrInvalidConcurrency 并发上限小于1
	ErrInvalidConcurrency = errors.New("rxgo: concurrency limit must be at least 1")
	// ErrNilObservable 映射函数返回了nil子流
	ErrNilObservable = errors.New("rxgo: projection returned a nil observable")
	// ErrNotObservable MergeAll 收到了不是 Observable 的源值
	ErrNotObservable = errors.New("rxgo: value is not an observable")
)

// EmptyError 空序列错误，errors.Is(err, ErrEmpty) 为 true
type EmptyError struct {
	message string
}

// NewEmptyError 创建空序列错误
func NewEmptyError() *EmptyError {
	return &EmptyError{message: ErrEmpty.Error()}
}

func (e *EmptyError) Error() string {
	return e.message
}

// Is 支持 errors.Is(err, ErrEmpty)
func (e *EmptyError) Is(target error) bool {
	return target == ErrEmpty
}

// PanicError 用户回调发生panic时的包装错误
type PanicError struct {
	Value interface{}
}

func newPanicError(value interface{}) *PanicError {
	if pe, ok := value.(*PanicError); ok {
		return pe
	}
	return &PanicError{Value: value}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("rxgo: recovered panic: %v", e.Value)
}

// Unwrap 当panic值本身是error时返回它
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// UnsubscriptionError 聚合取消订阅过程中所有清理函数的失败
type UnsubscriptionError struct {
	Errors []error
}

func (e *UnsubscriptionError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("rxgo: %d error(s) during unsubscription: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Unwrap 支持 errors.Is / errors.As 遍历所有子错误
func (e *UnsubscriptionError) Unwrap() []error {
	return e.Errors
}
