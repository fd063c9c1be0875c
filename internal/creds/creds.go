package creds

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Status 单项凭证的检查结果
type Status struct {
	Name    string
	Exists  bool
	Valid   bool
	Message string
	Path    string
}

// CheckAll 检查三项凭证的状态，任何一项缺失都不致命，只是如实上报
func CheckAll(cookiesPath, credentialsPath, tokenPath string) []Status {
	return []Status{
		checkCookies(cookiesPath),
		checkClientSecret(credentialsPath),
		checkToken(tokenPath),
	}
}

func checkCookies(path string) Status {
	s := Status{Name: "小红书 Cookie", Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		s.Message = "文件不存在"
		return s
	}
	s.Exists = true

	// Netscape 格式允许以注释开头，要有至少一行真正的 Cookie
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			s.Valid = true
			s.Message = "已配置"
			return s
		}
	}
	s.Message = "文件为空或只有注释"
	return s
}

func checkClientSecret(path string) Status {
	s := Status{Name: "Google OAuth 凭证", Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		s.Message = "文件不存在"
		return s
	}
	s.Exists = true

	var content map[string]json.RawMessage
	if err := json.Unmarshal(data, &content); err != nil {
		s.Message = "JSON 格式错误"
		return s
	}
	if _, ok := content["installed"]; !ok {
		if _, ok := content["web"]; !ok {
			s.Message = "格式不正确"
			return s
		}
	}
	s.Valid = true
	s.Message = "已配置"
	return s
}

func checkToken(path string) Status {
	s := Status{Name: "YouTube Token", Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		s.Message = "未授权（首次使用请先运行 -auth）"
		return s
	}
	s.Exists = true

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		s.Message = "读取失败: " + err.Error()
		return s
	}

	switch {
	case tok.Expiry.After(time.Now()) && tok.AccessToken != "":
		s.Valid = true
		s.Message = "有效"
	case tok.RefreshToken != "":
		s.Message = "已过期，运行时会自动刷新"
	default:
		s.Message = "无效"
	}
	return s
}
