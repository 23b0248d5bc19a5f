// Copyright 2025 The Verdad Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package verdad describes REST APIs as typed contracts shared by servers and
// clients.
//
// A contract is built from codecs, which validate untrusted JSON and convert
// it to Go values and back. Codecs compose: Object, Intersection, Union,
// Array, and the rest build codecs for request and response bodies, and the
// FromString codecs read typed path, query, and header parameters. Strict
// rejects object keys a codec doesn't declare.
//
// A Method ties codecs to a verb, a Path, and two disjoint sets of status
// codes: one for success responses and one for error responses. Methods are
// grouped into Resources, and Resources into an API along with the servers
// that host it.
//
// On the server, a Handler decodes requests for a Method, calls its
// Implementation, and encodes the outcome. Malformed requests and failing
// implementations become error responses chosen by an ErrorClassifier, and
// implementation errors are logged rather than sent to the caller. Handlers
// implement http.Handler and mount on chi routers.
//
// On the client, Do encodes a Call, sends it, and classifies the response
// against the Method's status codes. Anything other than a decoded success
// response is a *CallError.
package verdad

// Version is the semantic version of the verdad module.
const Version = "0.1.0"
