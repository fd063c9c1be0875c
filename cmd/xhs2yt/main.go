package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/all-the-day/xhs-to-youtube/internal/batch"
	"github.com/all-the-day/xhs-to-youtube/internal/config"
	"github.com/all-the-day/xhs-to-youtube/internal/creds"
	"github.com/all-the-day/xhs-to-youtube/internal/downloader"
	"github.com/all-the-day/xhs-to-youtube/internal/ledger"
	"github.com/all-the-day/xhs-to-youtube/internal/model"
	"github.com/all-the-day/xhs-to-youtube/internal/pipeline"
	"github.com/all-the-day/xhs-to-youtube/internal/watcher"
	"github.com/all-the-day/xhs-to-youtube/internal/xhs"
	"github.com/all-the-day/xhs-to-youtube/internal/youtube"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	url := flag.String("url", "", "搬运单个小红书视频")
	titleEN := flag.String("title-en", "", "英文标题（生成双语标题）")
	customDesc := flag.String("desc", "", "自定义视频描述")
	tags := flag.String("tags", "", "视频标签，逗号分隔")
	privacy := flag.String("privacy", "", "public、unlisted 或 private")
	keepVideo := flag.Bool("keep-video", false, "上传后保留本地视频文件")
	batchMode := flag.Bool("batch", false, "按列表批量搬运")
	listPath := flag.String("list", "", "视频列表文件（默认取配置里的 paths.video_list）")
	force := flag.Bool("force", false, "忽略已上传记录重新搬运")
	fetchUser := flag.String("fetch-user", "", "抓取用户主页的视频列表")
	watchMode := flag.Bool("watch", false, "监听列表文件变化并自动批量搬运")
	check := flag.Bool("check", false, "检查凭证状态")
	auth := flag.Bool("auth", false, "生成 YouTube 授权链接")
	authCode := flag.String("auth-code", "", "用授权码完成 YouTube 授权")
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	// 确保日志目录存在
	if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
		panic(err)
	}

	// 初始化日志
	logConfig := zap.NewProductionConfig()
	logConfig.OutputPaths = []string{"stdout", cfg.Logging.File}
	logConfig.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if cfg.Logging.Level == "debug" {
		logConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := logConfig.Build()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	a := &app{cfg: cfg, logger: logger}
	ctx := context.Background()

	list := *listPath
	if list == "" {
		list = cfg.Paths.VideoList
	}
	batchOpts := batch.Options{
		Force:       *force,
		IntervalMin: cfg.Batch.IntervalMin,
		IntervalMax: cfg.Batch.IntervalMax,
		Privacy:     *privacy,
		KeepVideo:   *keepVideo,
	}
	singleOpts := pipeline.Options{
		TitleEN:    *titleEN,
		CustomDesc: *customDesc,
		Tags:       splitTags(*tags),
		Privacy:    *privacy,
		KeepVideo:  *keepVideo,
	}

	switch {
	case *check:
		err = a.runCheck()
	case *auth:
		err = a.runAuthURL()
	case *authCode != "":
		err = a.runAuthExchange(ctx, *authCode)
	case *fetchUser != "":
		err = a.runFetchUser(ctx, *fetchUser, list)
	case *watchMode:
		err = a.runWatch(ctx, list, batchOpts)
	case *batchMode:
		err = a.runBatch(ctx, list, batchOpts)
	case *url != "":
		err = a.runSingle(ctx, *url, singleOpts)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Fatal("command failed", zap.Error(err))
	}
}

type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

func (a *app) openLedger() (*ledger.Ledger, error) {
	var store ledger.Store
	if a.cfg.Ledger.Backend == "sqlite" {
		var err error
		store, err = ledger.NewSQLite(a.cfg.Ledger.Path)
		if err != nil {
			return nil, err
		}
	} else {
		store = ledger.NewJSONFile(a.cfg.Ledger.Path)
	}
	return ledger.Load(store, a.logger), nil
}

// buildPipeline 组装整条搬运流水线，上传端此时就完成认证，
// token 失效能在跑批前暴露出来
func (a *app) buildPipeline(ctx context.Context) (*pipeline.Pipeline, *ledger.Ledger, error) {
	led, err := a.openLedger()
	if err != nil {
		return nil, nil, err
	}

	client, err := xhs.NewClient(a.cfg.Paths.Cookies, a.logger)
	if err != nil {
		led.Close()
		return nil, nil, err
	}

	authn := youtube.NewAuthenticator(a.cfg.Paths.Credentials, a.cfg.Paths.Token, a.logger)
	uploader, err := youtube.NewUploader(ctx, authn, a.logger)
	if err != nil {
		led.Close()
		return nil, nil, err
	}

	p := pipeline.New(
		client,
		downloader.New(a.cfg.Paths.VideosDir, a.logger),
		uploader,
		led,
		pipeline.Defaults{
			Tags:       a.cfg.Upload.Tags,
			CategoryID: a.cfg.Upload.CategoryID,
			Privacy:    a.cfg.Upload.Privacy,
		},
		a.logger,
	)
	p.SetProgress(func(percent float64, status string) {
		a.logger.Debug("progress", zap.Float64("percent", percent), zap.String("status", status))
	})
	return p, led, nil
}

func (a *app) runSingle(ctx context.Context, url string, opts pipeline.Options) error {
	p, led, err := a.buildPipeline(ctx)
	if err != nil {
		return err
	}
	defer led.Close()

	item := model.SourceItem{NoteID: xhs.NoteIDFromURL(url), URL: url}
	res, err := p.Transfer(ctx, item, opts)
	if err != nil {
		return err
	}
	fmt.Printf("搬运完成: %s\n", res.VideoURL)
	return nil
}

func (a *app) runBatch(ctx context.Context, listPath string, opts batch.Options) error {
	p, led, err := a.buildPipeline(ctx)
	if err != nil {
		return err
	}
	defer led.Close()

	list, err := model.ReadVideoList(listPath)
	if err != nil {
		return err
	}

	res, runErr := batch.New(p, led, a.logger).Run(ctx, list.Videos, opts)
	printSummary(res)
	return runErr
}

func (a *app) runWatch(ctx context.Context, listPath string, opts batch.Options) error {
	p, led, err := a.buildPipeline(ctx)
	if err != nil {
		return err
	}
	defer led.Close()

	runner := &batchRunner{
		sched:    batch.New(p, led, a.logger),
		listPath: listPath,
		opts:     opts,
	}
	w, err := watcher.New(listPath, a.cfg.Batch.WatchDebounce, runner, a.logger)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Start(); err != nil {
		return err
	}
	a.logger.Info("watching video list", zap.String("path", listPath))

	// 等待信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	a.logger.Info("shutting down...")
	return nil
}

func (a *app) runFetchUser(ctx context.Context, userURL, outPath string) error {
	client, err := xhs.NewClient(a.cfg.Paths.Cookies, a.logger)
	if err != nil {
		return err
	}

	list, err := client.FetchUserVideos(ctx, userURL)
	if err != nil {
		return err
	}
	if err := list.Write(outPath); err != nil {
		return err
	}
	fmt.Printf("找到 %d 个视频，已保存到 %s\n", list.TotalCount, outPath)
	return nil
}

func (a *app) runCheck() error {
	statuses := creds.CheckAll(a.cfg.Paths.Cookies, a.cfg.Paths.Credentials, a.cfg.Paths.Token)
	for _, s := range statuses {
		mark := "✗"
		if s.Valid {
			mark = "✓"
		}
		fmt.Printf("%s %s: %s (%s)\n", mark, s.Name, s.Message, s.Path)
	}
	return nil
}

func (a *app) runAuthURL() error {
	authn := youtube.NewAuthenticator(a.cfg.Paths.Credentials, a.cfg.Paths.Token, a.logger)
	url, err := authn.AuthURL()
	if err != nil {
		return err
	}
	fmt.Println("请在浏览器打开以下链接完成授权，然后用 -auth-code 提交授权码:")
	fmt.Println(url)
	return nil
}

func (a *app) runAuthExchange(ctx context.Context, code string) error {
	authn := youtube.NewAuthenticator(a.cfg.Paths.Credentials, a.cfg.Paths.Token, a.logger)
	if err := authn.Exchange(ctx, code); err != nil {
		return err
	}
	fmt.Println("授权成功")
	return nil
}

// batchRunner 把批量搬运接到列表文件监听上，每次触发都重读列表
type batchRunner struct {
	sched    *batch.Scheduler
	listPath string
	opts     batch.Options
}

func (r *batchRunner) RunBatch() error {
	list, err := model.ReadVideoList(r.listPath)
	if err != nil {
		return err
	}
	res, err := r.sched.Run(context.Background(), list.Videos, r.opts)
	printSummary(res)
	return err
}

func printSummary(res *model.BatchResult) {
	if res == nil {
		return
	}
	fmt.Printf("总计: %d  成功: %d  跳过: %d  失败: %d\n",
		res.Total, res.SuccessCount, res.Skipped, res.Failed)
	for _, v := range res.FailedVideos {
		fmt.Printf("  - %s: %s\n", v.Title, v.Error)
	}
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}
