package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	yt "google.golang.org/api/youtube/v3"
)

// 命令行手动授权用的重定向方式
const oobRedirectURL = "urn:ietf:wg:oauth:2.0:oob"

// Authenticator 管理 OAuth 凭证文件和 token 的加载、刷新与持久化
type Authenticator struct {
	credentialsPath string
	tokenPath       string
	logger          *zap.Logger
}

func NewAuthenticator(credentialsPath, tokenPath string, logger *zap.Logger) *Authenticator {
	return &Authenticator{
		credentialsPath: credentialsPath,
		tokenPath:       tokenPath,
		logger:          logger,
	}
}

func (a *Authenticator) config() (*oauth2.Config, error) {
	b, err := os.ReadFile(a.credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read oauth credentials: %w", err)
	}
	cfg, err := google.ConfigFromJSON(b, yt.YoutubeUploadScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth credentials: %w", err)
	}
	return cfg, nil
}

func (a *Authenticator) loadToken() (*oauth2.Token, error) {
	b, err := os.ReadFile(a.tokenPath)
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, fmt.Errorf("parse token file: %w", err)
	}
	return &tok, nil
}

func (a *Authenticator) saveToken(tok *oauth2.Token) error {
	b, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	if err := os.WriteFile(a.tokenPath, b, 0600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

// Client 返回带自动刷新的 HTTP 客户端。token 缺失或刷新失败都是 AuthError，
// 刷新成功时把新 token 回写 token.json。
func (a *Authenticator) Client(ctx context.Context) (*http.Client, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, &AuthError{Err: err}
	}
	tok, err := a.loadToken()
	if err != nil {
		return nil, &AuthError{Err: fmt.Errorf("token missing, run -auth first: %w", err)}
	}

	ts := cfg.TokenSource(ctx, tok)
	fresh, err := ts.Token()
	if err != nil {
		return nil, &AuthError{Err: err}
	}
	if fresh.AccessToken != tok.AccessToken {
		a.logger.Info("youtube token refreshed")
		if err := a.saveToken(fresh); err != nil {
			a.logger.Warn("save refreshed token failed", zap.Error(err))
		}
	}
	return oauth2.NewClient(ctx, ts), nil
}

// AuthURL 生成手动授权链接，用户在浏览器完成授权后拿到授权码。
// offline + consent 保证返回 refresh token。
func (a *Authenticator) AuthURL() (string, error) {
	cfg, err := a.config()
	if err != nil {
		return "", err
	}
	cfg.RedirectURL = oobRedirectURL
	return cfg.AuthCodeURL("state-token",
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent")), nil
}

// Exchange 用授权码换取 token 并保存
func (a *Authenticator) Exchange(ctx context.Context, code string) error {
	cfg, err := a.config()
	if err != nil {
		return err
	}
	cfg.RedirectURL = oobRedirectURL

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange authorization code: %w", err)
	}
	if err := a.saveToken(tok); err != nil {
		return err
	}
	a.logger.Info("youtube token saved", zap.String("path", a.tokenPath))
	return nil
}
