/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/redhat-data-and-ai/sankalan/internal/httpapi/handlers"
	"github.com/redhat-data-and-ai/sankalan/internal/httpapi/middleware"
	"github.com/redhat-data-and-ai/sankalan/pkg/config"
	"github.com/redhat-data-and-ai/sankalan/pkg/report"
)

type APIServer struct {
	config   *config.AppConfig
	router   *gin.Engine
	server   *http.Server
	handlers *handlers.Handlers
}

func NewAPIServer(cfg *config.AppConfig, fetcher report.Fetcher) *APIServer {
	if cfg.App.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		requestID, _ := param.Keys[middleware.RequestIDKey].(string)
		logrus.WithFields(logrus.Fields{
			"method":     param.Method,
			"path":       param.Path,
			"status":     param.StatusCode,
			"latency":    param.Latency,
			"client_ip":  param.ClientIP,
			"user_agent": param.Request.UserAgent(),
			"request_id": requestID,
			"error":      param.ErrorMessage,
		}).Info("HTTP request")
		return ""
	}))
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(&cfg.APIServer))

	s := &APIServer{
		config:   cfg,
		router:   router,
		handlers: handlers.NewHandlers(cfg, fetcher),
	}

	s.setupRoutes()
	return s
}

func (s *APIServer) setupRoutes() {
	s.router.GET("/api/v1/status", s.handlers.Status)

	v1 := s.router.Group("/api/v1")
	v1.Use(middleware.BasicAuth(s.config))

	v1.GET("/reports", s.handlers.ListReports)
	v1.GET("/reports/:topic", s.handlers.GetReport)
	v1.GET("/queries/:template", s.handlers.GetQuery)
}

// Handler exposes the router, mainly for tests
func (s *APIServer) Handler() http.Handler {
	return s.router
}

func (s *APIServer) Start() error {
	s.server = &http.Server{
		Addr:              s.config.APIServer.Address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.StopServer()

	logrus.WithField("address", s.server.Addr).Info("starting http API server")
	if err := s.server.ListenAndServe(); err != nil {
		if err == http.ErrServerClosed {
			logrus.Info("http API server stopped")
			return nil
		}
		return fmt.Errorf("failed to start http API server : %w", err)
	}

	return nil
}

func (s *APIServer) StopServer() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("turning down http API server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("error during HTTP API server shutdown")
	}

}
