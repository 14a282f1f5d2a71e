package openapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

type fileBody struct {
	Name     string            `json:"name"`
	CommitID string            `json:"commitId"`
	Labels   map[string]string `json:"labels,omitempty"`
	internal string
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	e := gin.New()
	noop := func(c *gin.Context) { c.Status(http.StatusOK) }
	e.GET("/login", noop)
	e.GET("/api/v1/namespaces", noop)
	e.PUT("/api/v1/namespaces/:namespace/file", noop)
	e.POST("/api/v1/auth/login", noop)
	return e
}

func TestGenerateFiltersByPrefix(t *testing.T) {
	g := NewGenerator(newEngine(), Info{Title: "test", Version: "1"}, nil, nil).WithPrefix("/api/")
	spec := g.Generate()

	if _, ok := spec.Paths["/login"]; ok {
		t.Error("page route /login included in API document")
	}
	if _, ok := spec.Paths["/api/v1/namespaces/{namespace}/file"]; !ok {
		t.Errorf("missing converted path, got %v", keys(spec.Paths))
	}
}

func TestGenerateAppliesDocs(t *testing.T) {
	g := NewGenerator(newEngine(), Info{Title: "test", Version: "1"}, nil, nil).WithPrefix("/api/")
	g.AddSecurityScheme("bearerAuth", SecurityScheme{Type: "http", Scheme: "bearer", BearerFormat: "JWT"})
	g.RegisterDocs("PUT", "/api/v1/namespaces/:namespace/file", RouteDocs{
		Summary:     "Update file",
		Tags:        []string{"Files"},
		Query:       []QueryParam{{Name: "path"}},
		RequestBody: fileBody{},
		Responses:   map[int]ResponseDoc{409: {Description: "Stale commit id"}},
	})
	g.RegisterDocs("POST", "/api/v1/auth/login", RouteDocs{Summary: "Sign in", Public: true})

	spec := g.Generate()
	put := spec.Paths["/api/v1/namespaces/{namespace}/file"].Put
	if put == nil {
		t.Fatal("PUT operation missing")
	}
	if put.Summary != "Update file" {
		t.Errorf("Summary = %q", put.Summary)
	}

	var names []string
	for _, p := range put.Parameters {
		names = append(names, p.In+":"+p.Name)
	}
	if diff := cmp.Diff([]string{"path:namespace", "query:path"}, names); diff != "" {
		t.Errorf("parameters mismatch (-want +got):\n%s", diff)
	}

	body := put.RequestBody.Content["application/json"].Schema
	if _, ok := body.Properties["commitId"]; !ok {
		t.Error("request schema missing commitId")
	}
	if _, ok := body.Properties["internal"]; ok {
		t.Error("request schema includes unexported field")
	}
	if got := body.Properties["labels"].AdditionalProperties; got == nil || got.Type != "string" {
		t.Errorf("labels additionalProperties = %+v", got)
	}
	if _, ok := put.Responses["409"]; !ok {
		t.Error("409 response missing")
	}
	if len(put.Security) != 1 {
		t.Errorf("Security = %v, want one requirement", put.Security)
	}

	login := spec.Paths["/api/v1/auth/login"].Post
	if login.Security != nil {
		t.Errorf("public route has security %v", login.Security)
	}
}

func TestDocumentEncodings(t *testing.T) {
	g := NewGenerator(newEngine(), Info{Title: "test", Version: "1"}, nil, nil)
	g.AddSecurityScheme("bearerAuth", SecurityScheme{Type: "http", Scheme: "bearer", BearerFormat: "JWT"})
	spec := g.Generate()

	raw, err := spec.JSON()
	if err != nil {
		t.Fatalf("JSON() error = %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("JSON output does not parse: %v", err)
	}
	if decoded["openapi"] != "3.0.3" {
		t.Errorf("openapi = %v", decoded["openapi"])
	}

	y, err := spec.YAML()
	if err != nil {
		t.Fatalf("YAML() error = %v", err)
	}
	var fromYAML map[string]any
	if err := yaml.Unmarshal(y, &fromYAML); err != nil {
		t.Fatalf("YAML output does not parse: %v", err)
	}
	if diff := cmp.Diff(decoded, fromYAML); diff != "" {
		t.Errorf("YAML and JSON documents differ (-json +yaml):\n%s", diff)
	}
	for _, want := range []string{"securitySchemes:\n", "bearerFormat: JWT\n"} {
		if !strings.Contains(string(y), want) {
			t.Errorf("YAML missing block-style %q:\n%s", want, y)
		}
	}
}

func TestGetOperationID(t *testing.T) {
	got := getOperationID("github.com/acme/app/internal/transport/http/handler.(*APIHandler).GetFile-fm")
	if got != "handler_APIHandler_GetFile" {
		t.Errorf("getOperationID() = %q", got)
	}
}

func keys(m map[string]*PathItem) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

type auditMeta struct {
	Author string `json:"author"`
}

type saveRequest struct {
	auditMeta
	Message string   `json:"message" binding:"required,min=1,max=200"`
	Mode    string   `json:"mode,omitempty" binding:"oneof=merge replace"`
	Paths   []string `json:"paths" binding:"required,min=1"`
	Raw     []byte   `json:"raw,omitempty"`
}

func TestGenerateSchemaBindingRules(t *testing.T) {
	s := GenerateSchema(&saveRequest{})

	if diff := cmp.Diff([]string{"message", "paths"}, s.Required); diff != "" {
		t.Errorf("required mismatch (-want +got):\n%s", diff)
	}
	if _, ok := s.Properties["author"]; !ok {
		t.Error("embedded field author not flattened")
	}
	msg := s.Properties["message"]
	if msg.MinLength == nil || *msg.MinLength != 1 || msg.MaxLength == nil || *msg.MaxLength != 200 {
		t.Errorf("message bounds = %v..%v", msg.MinLength, msg.MaxLength)
	}
	if diff := cmp.Diff([]string{"merge", "replace"}, s.Properties["mode"].Enum); diff != "" {
		t.Errorf("mode enum mismatch (-want +got):\n%s", diff)
	}
	if p := s.Properties["paths"]; p.MinItems == nil || *p.MinItems != 1 {
		t.Errorf("paths minItems = %v", p.MinItems)
	}
	if got := s.Properties["raw"].Format; got != "byte" {
		t.Errorf("raw format = %q, want byte", got)
	}
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func TestGenerateSharesResponseModels(t *testing.T) {
	g := NewGenerator(newEngine(), Info{Title: "test", Version: "1"}, nil, nil).WithPrefix("/api/")
	denied := ResponseDoc{Description: "Unauthorized", Model: apiError{}}
	g.RegisterDocs("GET", "/api/v1/namespaces", RouteDocs{Responses: map[int]ResponseDoc{401: denied}})
	g.RegisterDocs("PUT", "/api/v1/namespaces/:namespace/file", RouteDocs{Responses: map[int]ResponseDoc{401: denied}})

	spec := g.Generate()
	if len(spec.Components.Schemas) != 1 {
		t.Fatalf("components = %v, want only apiError", spec.Components.Schemas)
	}
	if _, ok := spec.Components.Schemas["apiError"].Properties["message"]; !ok {
		t.Error("component schema missing message")
	}
	for _, op := range []*Operation{
		spec.Paths["/api/v1/namespaces"].Get,
		spec.Paths["/api/v1/namespaces/{namespace}/file"].Put,
	} {
		ref := op.Responses["401"].Content["application/json"].Schema.Ref
		if ref != "#/components/schemas/apiError" {
			t.Errorf("401 schema ref = %q", ref)
		}
	}
}
