/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package models

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins,omitempty"`
	AllowCredentials bool     `json:"allow_credentials,omitempty"`
}

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}
