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
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/redhat-data-and-ai/sankalan/pkg/config"
)

// CORS lets the configured dashboard origins call the API from a browser.
// Preflight requests are answered here and never reach auth.
func CORS(cfg *config.APIServer) gin.HandlerFunc {
	allowed := make(map[string]bool, len(cfg.CORS.AllowedOrigins))
	wildcard := false
	for _, origin := range cfg.CORS.AllowedOrigins {
		if origin == "*" {
			wildcard = true
		}
		allowed[origin] = true
	}

	methods := strings.Join(cfg.CORS.AllowedMethods, ", ")
	if methods == "" {
		methods = "GET, OPTIONS"
	}
	headers := strings.Join(cfg.CORS.AllowedHeaders, ", ")
	if headers == "" {
		headers = "Authorization, Content-Type"
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (wildcard || allowed[origin]) {
			if wildcard {
				c.Header("Access-Control-Allow-Origin", "*")
			} else {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
			}
			c.Header("Access-Control-Allow-Methods", methods)
			c.Header("Access-Control-Allow-Headers", headers)
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
