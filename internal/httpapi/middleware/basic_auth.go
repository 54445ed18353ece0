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
	"crypto/sha256"
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/redhat-data-and-ai/sankalan/pkg/config"
	"github.com/redhat-data-and-ai/sankalan/pkg/logger"
)

const (
	authRealm   = `Basic realm="Sankalan"`
	ClientIDKey = "clientId"
)

// BasicAuth guards the report routes with the configured dashboard users.
// Users with an empty password, typically an unset env| reference, never match.
func BasicAuth(cfg *config.AppConfig) gin.HandlerFunc {
	users := make(map[string][32]byte, len(cfg.APIServer.Auth.BasicUsers))
	for _, u := range cfg.APIServer.Auth.BasicUsers {
		if u.Username != "" && u.Password != "" {
			users[u.Username] = sha256.Sum256([]byte(u.Password))
		}
	}

	return func(c *gin.Context) {
		if !cfg.APIServer.Auth.Enabled {
			c.Next()
			return
		}

		username, password, ok := c.Request.BasicAuth()
		if !ok || username == "" || password == "" {
			c.Header("WWW-Authenticate", authRealm)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		want, known := users[username]
		got := sha256.Sum256([]byte(password))
		if subtle.ConstantTimeCompare(got[:], want[:]) != 1 || !known {
			logger.Logger(c.Request.Context()).WithField("username", username).Warn("rejected API credentials")
			c.Header("WWW-Authenticate", authRealm)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Set(ClientIDKey, username)
		c.Request = c.Request.WithContext(
			logger.AddValueToContextLogger(c.Request.Context(), "client_id", username))
		c.Next()
	}
}
