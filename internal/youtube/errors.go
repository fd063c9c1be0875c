package youtube

import (
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

// AuthError YouTube 会话失效（token 过期或被吊销）。
// 这是系统性故障：批量任务遇到它应立即停止，而不是逐条跳过。
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("youtube authorization invalid: %v", e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// UploadError 其它上传失败（配额、元数据不合法、网络等），只影响当前条目
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("youtube upload failed: %v", e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// classify 把 API 错误归类：401 和带 authError 原因的 403 是认证问题，
// refresh token 换取失败同样按认证问题处理
func classify(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return &AuthError{Err: err}
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusUnauthorized {
			return &AuthError{Err: err}
		}
		if apiErr.Code == http.StatusForbidden {
			for _, item := range apiErr.Errors {
				if item.Reason == "authError" {
					return &AuthError{Err: err}
				}
			}
		}
	}
	return &UploadError{Err: err}
}
