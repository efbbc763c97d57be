package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/gmail-assistant/internal/assistant"
	"github.com/hal9000y/gmail-assistant/internal/auth"
	"github.com/hal9000y/gmail-assistant/internal/chatapi"
	"github.com/hal9000y/gmail-assistant/internal/config"
	"github.com/hal9000y/gmail-assistant/internal/gservice"
	"github.com/hal9000y/gmail-assistant/internal/llm"
	"github.com/hal9000y/gmail-assistant/internal/logging"
	"github.com/hal9000y/gmail-assistant/internal/mailbox"
	"github.com/hal9000y/gmail-assistant/internal/metrics"
	"github.com/hal9000y/gmail-assistant/internal/tool"
)

// app holds the wired components shared by every command.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	ln       net.Listener
	oauthCfg *oauth2.Config
	tok      *auth.Token
	gemini   *llm.Client
	mailbox  *mailbox.Service
	sessions *assistant.Sessions
	metrics  *metrics.Metrics

	closeLog func()
}

func newApp(ctx context.Context, flags *rootFlags, quietLogs bool) (*app, error) {
	cfg, err := config.Load(flags.configFile, flags.envFile)
	if err != nil {
		return nil, fmt.Errorf("config.Load failed: %w", err)
	}
	if flags.httpAddr != "" {
		cfg.HTTPAddr = flags.httpAddr
	}
	if flags.logFile != "" {
		cfg.Log.File = flags.logFile
	}
	if flags.oauthURL != "" {
		cfg.OAuth.RedirectURL = flags.oauthURL
	}
	if !cfg.HasOAuthClient() {
		return nil, fmt.Errorf("env variables %s and %s must be set", config.EnvOAuthClientID, config.EnvOAuthClientSecret)
	}

	logger, closeLog, err := logging.New(cfg.Log, quietLogs)
	if err != nil {
		return nil, fmt.Errorf("logging.New failed: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, closeLog: closeLog}
	if err := a.init(ctx); err != nil {
		closeLog()
		return nil, err
	}

	return a, nil
}

func (a *app) init(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("net.Listen failed: %w", err)
	}
	a.ln = ln

	redirectURL := a.cfg.OAuth.RedirectURL
	if redirectURL == "" {
		redirectURL = fmt.Sprintf("http://%s/oauth", ln.Addr().String())
	}
	a.oauthCfg = &oauth2.Config{
		ClientID:     a.cfg.OAuth.ClientID,
		ClientSecret: a.cfg.OAuth.ClientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{gmail.GmailModifyScope},
		Endpoint:     google.Endpoint,
	}

	a.tok, err = auth.NewToken(a.oauthCfg, a.cfg.OAuth.TokenFile, a.logger)
	if err != nil {
		_ = ln.Close()
		return fmt.Errorf("auth.NewToken failed: %w", err)
	}

	a.gemini, err = llm.Dial(ctx, llm.Config{
		APIKey:           a.cfg.LLM.APIKey,
		Model:            a.cfg.LLM.Model,
		SummaryBodyLimit: a.cfg.LLM.SummaryBodyLimit,
		ReplyBodyLimit:   a.cfg.LLM.ReplyBodyLimit,
	}, a.logger)
	if err != nil {
		_ = ln.Close()
		return fmt.Errorf("llm.Dial failed: %w", err)
	}
	if a.cfg.LLM.APIKey == "" {
		a.logger.Warn("GOOGLE_API_KEY is not set, the assistant cannot understand requests")
	}

	a.mailbox = mailbox.New(gservice.NewGmail(a.tok), a.gemini, mailbox.Config{
		ListMaxResults:   a.cfg.Gmail.ListMaxResults,
		SearchMaxResults: a.cfg.Gmail.SearchMaxResults,
		RecentQuery:      a.cfg.Gmail.RecentQuery,
		Concurrency:      a.cfg.Gmail.Concurrency,
	}, a.logger)

	a.metrics = metrics.New(func() int { return a.sessions.Len() })

	orch := assistant.NewOrchestrator(a.gemini, a.mailbox, a.gemini, a.logger,
		assistant.WithRecorder(a.metrics),
		assistant.WithTurnTimeout(a.cfg.Assistant.TurnTimeout),
		assistant.WithUserID(a.cfg.Gmail.UserID),
	)
	a.sessions = assistant.NewSessions(orch, a.cfg.Assistant.HistoryLimit, a.cfg.Assistant.SessionTTL)

	return nil
}

func (a *app) close() {
	a.logger.Info("Persisting token if exists")
	if err := a.tok.Persist(); err != nil {
		a.logger.Error("tok.Persist failed", zap.Error(err))
	}
	a.closeLog()
}

func (a *app) mcpServer() *mcp.Server {
	return tool.NewServer(a.mailbox, a.gemini, a.sessions, a.cfg.Gmail.UserID, a.logger)
}

// mux mounts every HTTP route. withMCP adds the streamable MCP endpoint.
func (a *app) mux(withMCP bool) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/oauth", auth.NewHTTPHandler(a.tok, a.logger))
	mux.Handle("GET /metrics", a.metrics.Handler())

	chatapi.New(a.sessions, map[string]assistant.Checker{
		"gmail":  a.mailbox,
		"gemini": a.gemini,
	}, a.logger).Register(mux)

	if withMCP {
		srv := a.mcpServer()
		mux.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server { return srv }, nil))
	}

	return mux
}

// authorizeIfNeeded opens the consent page when no token is stored yet.
func (a *app) authorizeIfNeeded() {
	if err := a.tok.Ready(); errors.Is(err, auth.ErrTokenNotSet) {
		openBrowser(a.oauthCfg.RedirectURL, a.logger)
	}
}

// serveHTTP runs srv on the app listener until ctx is done.
func (a *app) serveHTTP(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting http server", zap.String("addr", a.ln.Addr().String()))
		errCh <- srv.Serve(a.ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("srv.Serve failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("srv.Shutdown failed", zap.Error(err))
	}
	<-errCh
	a.logger.Info("HTTP server stopped")

	return nil
}

func openBrowser(url string, logger *zap.Logger) {
	url = fmt.Sprintf("%s?redirect=1", url)
	var err error
	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start()
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = fmt.Errorf("unsupported platform")
	}

	if err != nil {
		logger.Warn("Could not open browser automatically, please open the link manually", zap.String("url", url), zap.Error(err))
	}
}
