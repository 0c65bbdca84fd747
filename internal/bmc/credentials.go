/*
Copyright (c) 2025 Fsas Technologies Inc., or its subsidiaries. All Rights Reserved.

Licensed under the Mozilla Public License Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://mozilla.org/MPL/2.0/


Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package bmc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultCredentialsFile holds "user:password" for the management controllers.
const DefaultCredentialsFile = "~/.ipmicreds"

// Credentials are used for basic authentication against every management endpoint.
type Credentials struct {
	Username string
	Password string
}

// ParseCredentials parses a single "user:password" line.
func ParseCredentials(content string) (Credentials, error) {
	user, pass, found := strings.Cut(strings.TrimSpace(content), ":")
	if !found || user == "" || pass == "" {
		return Credentials{}, fmt.Errorf("credentials must have the form user:password")
	}

	return Credentials{Username: user, Password: pass}, nil
}

// LoadCredentials reads credentials from path, expanding a leading "~/".
func LoadCredentials(path string) (Credentials, error) {
	expanded, err := expandHome(path)
	if err != nil {
		return Credentials{}, err
	}

	content, err := os.ReadFile(expanded)
	if err != nil {
		return Credentials{}, fmt.Errorf("unable to read credentials file: %w", err)
	}

	creds, err := ParseCredentials(string(content))
	if err != nil {
		return Credentials{}, fmt.Errorf("%s: %w", expanded, err)
	}

	return creds, nil
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("unable to resolve home directory: %w", err)
	}

	return filepath.Join(home, path[2:]), nil
}
