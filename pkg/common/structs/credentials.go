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

package structs

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingProjectID is returned when credential material carries no project_id
var ErrMissingProjectID = errors.New("credential material has no project_id")

// ServiceAccount is the credential material handed to a warehouse connector.
// The first block mirrors a Google service account key file; the second
// block carries the fields other warehouses authenticate with.
type ServiceAccount struct {
	Type         string `json:"type,omitempty"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id,omitempty"`
	PrivateKey   string `json:"private_key,omitempty"`
	ClientEmail  string `json:"client_email,omitempty"`
	ClientID     string `json:"client_id,omitempty"`
	TokenURI     string `json:"token_uri,omitempty"`

	User      string `json:"user,omitempty"`
	Password  string `json:"password,omitempty"`
	Token     string `json:"token,omitempty"`
	BaseURL   string `json:"base_url,omitempty"`
	Database  string `json:"database,omitempty"`
	Schema    string `json:"schema,omitempty"`
	Warehouse string `json:"warehouse,omitempty"`
	Role      string `json:"role,omitempty"`

	// Raw holds the material exactly as read from its source
	Raw []byte `json:"-"`
}

// ParseServiceAccount parses credential material. Material is usable only
// when it is a JSON object with a non-empty project_id.
func ParseServiceAccount(data []byte) (*ServiceAccount, error) {
	var sa ServiceAccount
	if err := json.Unmarshal(data, &sa); err != nil {
		return nil, fmt.Errorf("invalid credential json: %w", err)
	}
	if sa.ProjectID == "" {
		return nil, ErrMissingProjectID
	}
	sa.Raw = append([]byte(nil), data...)
	return &sa, nil
}

// Principal returns the identity the material authenticates as
func (sa *ServiceAccount) Principal() string {
	if sa.User != "" {
		return sa.User
	}
	return sa.ClientEmail
}
