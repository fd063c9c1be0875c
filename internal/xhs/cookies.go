package xhs

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadCookies 读取 Netscape 格式的 cookies.txt。
// 文件不存在时返回空映射，未登录也能访问部分页面。
func LoadCookies(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("open cookies file: %w", err)
	}
	defer f.Close()

	cookies := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// Netscape 格式每行 7 个制表符分隔字段，第 6、7 个是名称和值
		parts := strings.Split(line, "\t")
		if len(parts) >= 7 {
			cookies[parts[5]] = parts[6]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read cookies file: %w", err)
	}
	return cookies, nil
}
