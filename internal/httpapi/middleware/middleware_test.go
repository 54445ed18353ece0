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

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/redhat-data-and-ai/sankalan/pkg/config"
	"github.com/redhat-data-and-ai/sankalan/pkg/logger"
)

type MiddlewareTestSuite struct {
	suite.Suite
	cfg *config.AppConfig
}

func (s *MiddlewareTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.cfg = &config.AppConfig{
		APIServer: config.APIServer{
			CORS: config.CORS{AllowedOrigins: []string{"https://dash.example.com"}},
			Auth: config.Auth{
				Enabled:    true,
				BasicUsers: []config.BasicUser{{Username: "viewer", Password: "s3cret"}},
			},
		},
	}
}

func (s *MiddlewareTestSuite) router(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return r
}

func (s *MiddlewareTestSuite) do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func (s *MiddlewareTestSuite) TestBasicAuth() {
	r := s.router(BasicAuth(s.cfg))

	tests := []struct {
		name     string
		user     string
		password string
		setAuth  bool
		status   int
	}{
		{name: "valid credentials", user: "viewer", password: "s3cret", setAuth: true, status: http.StatusOK},
		{name: "wrong password", user: "viewer", password: "nope", setAuth: true, status: http.StatusUnauthorized},
		{name: "unknown user", user: "admin", password: "s3cret", setAuth: true, status: http.StatusUnauthorized},
		{name: "no header", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.setAuth {
				req.SetBasicAuth(tt.user, tt.password)
			}
			w := s.do(r, req)
			s.Equal(tt.status, w.Code)
		})
	}
}

func (s *MiddlewareTestSuite) TestBasicAuthChallenge() {
	w := s.do(s.router(BasicAuth(s.cfg)), httptest.NewRequest(http.MethodGet, "/ping", nil))
	s.Equal(`Basic realm="Sankalan"`, w.Header().Get("WWW-Authenticate"))
}

func (s *MiddlewareTestSuite) TestBasicAuthIgnoresUsersWithoutPassword() {
	s.cfg.APIServer.Auth.BasicUsers = append(s.cfg.APIServer.Auth.BasicUsers, config.BasicUser{Username: "ghost"})
	r := s.router(BasicAuth(s.cfg))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.SetBasicAuth("ghost", "anything")
	s.Equal(http.StatusUnauthorized, s.do(r, req).Code)
}

func (s *MiddlewareTestSuite) TestBasicAuthDisabled() {
	s.cfg.APIServer.Auth.Enabled = false
	w := s.do(s.router(BasicAuth(s.cfg)), httptest.NewRequest(http.MethodGet, "/ping", nil))
	s.Equal(http.StatusOK, w.Code)
}

func (s *MiddlewareTestSuite) TestCORSAllowedOrigin() {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://dash.example.com")

	w := s.do(s.router(CORS(&s.cfg.APIServer)), req)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("https://dash.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	s.Equal("GET, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	s.Equal("Origin", w.Header().Get("Vary"))
}

func (s *MiddlewareTestSuite) TestCORSUnknownOrigin() {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")

	w := s.do(s.router(CORS(&s.cfg.APIServer)), req)
	s.Equal(http.StatusOK, w.Code)
	s.Empty(w.Header().Get("Access-Control-Allow-Origin"))
}

func (s *MiddlewareTestSuite) TestCORSPreflightSkipsAuth() {
	s.cfg.APIServer.CORS.AllowedOrigins = []string{"*"}
	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://anywhere.example.com")

	w := s.do(s.router(CORS(&s.cfg.APIServer), BasicAuth(s.cfg)), req)
	s.Equal(http.StatusNoContent, w.Code)
	s.Equal("*", w.Header().Get("Access-Control-Allow-Origin"))
}

func (s *MiddlewareTestSuite) TestRequestIDEchoesHeader() {
	var seen string
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) {
		seen, _ = logger.Logger(c.Request.Context()).Data[logger.RequestId].(string)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := s.do(r, req)

	s.Equal("abc-123", w.Header().Get(RequestIDHeader))
	s.Equal("abc-123", seen)
}

func (s *MiddlewareTestSuite) TestRequestIDGenerated() {
	var fromKeys, fromHeader string
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) {
		fromKeys = c.GetString(RequestIDKey)
		fromHeader = c.Request.Header.Get(RequestIDHeader)
		c.Status(http.StatusOK)
	})

	w := s.do(r, httptest.NewRequest(http.MethodGet, "/ping", nil))

	id := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	s.NoError(err)
	s.Equal(id, fromKeys)
	s.Equal(id, fromHeader)
}

func TestMiddlewareTestSuite(t *testing.T) {
	suite.Run(t, new(MiddlewareTestSuite))
}
