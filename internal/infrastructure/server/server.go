// Package server 依序嘗試主要與備援位址啟動 HTTP 服務。
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"travel-drink-generator/internal/infrastructure/config"
	"travel-drink-generator/internal/pkg/common"

	"go.uber.org/zap"
)

// ErrNoListener 主要與備援位址都無法綁定
var ErrNoListener = errors.New("unable to bind any listen address")

// Listen 先綁定主要位址，失敗時改用備援位址
func Listen(cfg config.ServerConfig) (net.Listener, error) {
	primary := cfg.Address()
	ln, err := net.Listen("tcp", primary)
	if err == nil {
		return ln, nil
	}

	safe := cfg.SafeAddress()
	common.LogInfo("改用備援位址",
		zap.String("primary", primary),
		zap.String("safe", safe),
		zap.Error(err),
	)
	ln, safeErr := net.Listen("tcp", safe)
	if safeErr != nil {
		return nil, fmt.Errorf("%w: %s: %v; %s: %v", ErrNoListener, primary, err, safe, safeErr)
	}
	return ln, nil
}

// Server 包裝 http.Server 與實際使用的 listener
type Server struct {
	http     *http.Server
	listener net.Listener
}

// New 綁定位址並建立服務，尚未開始接受連線
func New(cfg config.ServerConfig, handler http.Handler) (*Server, error) {
	ln, err := Listen(cfg)
	if err != nil {
		return nil, err
	}
	return &Server{
		http: &http.Server{
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		listener: ln,
	}, nil
}

// Addr 實際監聽的位址
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Serve 阻塞直到服務關閉；正常關閉時回傳 nil
func (s *Server) Serve() error {
	common.LogInfo("伺服器已啟動", zap.String("addr", s.Addr()))
	if err := s.http.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 優雅關閉
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
