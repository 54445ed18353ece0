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
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/redhat-data-and-ai/sankalan/pkg/logger"
)

const (
	RequestIDHeader = "X-Request-Id"
	// RequestIDKey holds the request id in the gin context keys
	RequestIDKey = "requestId"
)

// RequestID tags the request context logger with the caller's request id,
// or a fresh one, and echoes it back.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		ctx := logger.WithRequestId(c.Request.Context(), id)
		c.Request = c.Request.WithContext(ctx)
		c.Request.Header.Set(RequestIDHeader, id)
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
