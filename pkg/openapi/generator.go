package openapi

import (
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// RouteDocs describes one route beyond what gin knows about it
type RouteDocs struct {
	Summary     string
	Description string
	Tags        []string
	Query       []QueryParam
	RequestBody interface{} // Struct for request body schema
	Responses   map[int]ResponseDoc
	// Public routes are documented without a security requirement
	Public bool
}

// QueryParam is a documented query string parameter
type QueryParam struct {
	Name        string
	Description string
	Required    bool
}

type ResponseDoc struct {
	Description string
	Model       interface{} // Struct for response schema
	Example     interface{} // Example value
}

// Generator builds an OpenAPI document from the routes registered on a gin
// engine. Only routes under prefix are included.
type Generator struct {
	engine    *gin.Engine
	info      Info
	servers   []Server
	tags      []Tag
	prefix    string
	security  map[string]SecurityScheme
	routeDocs map[string]RouteDocs
}

func NewGenerator(engine *gin.Engine, info Info, servers []Server, tags []Tag) *Generator {
	return &Generator{
		engine:    engine,
		info:      info,
		servers:   servers,
		tags:      tags,
		security:  make(map[string]SecurityScheme),
		routeDocs: make(map[string]RouteDocs),
	}
}

// WithPrefix restricts the document to routes whose path starts with prefix
func (g *Generator) WithPrefix(prefix string) *Generator {
	g.prefix = prefix
	return g
}

// AddSecurityScheme registers a scheme that protects every non-public route
func (g *Generator) AddSecurityScheme(name string, scheme SecurityScheme) {
	g.security[name] = scheme
}

// RegisterDocs registers documentation for a specific route
// method: GET, POST, etc.
// path: /api/v1/namespaces/:namespace/file
func (g *Generator) RegisterDocs(method, path string, docs RouteDocs) {
	key := method + " " + path
	g.routeDocs[key] = docs
}

// Generate walks the engine's routes and assembles the document. Response
// models are emitted once under components.schemas and referenced by name.
func (g *Generator) Generate() *OpenAPI {
	doc := &OpenAPI{
		OpenAPI:    "3.0.3",
		Info:       g.info,
		Servers:    g.servers,
		Tags:       g.tags,
		Paths:      map[string]*PathItem{},
		Components: Components{Schemas: map[string]*Schema{}},
	}
	if len(g.security) > 0 {
		doc.Components.SecuritySchemes = g.security
	}
	requirement := g.requirement()

	for _, route := range g.engine.Routes() {
		if !strings.HasPrefix(route.Path, g.prefix) {
			continue
		}

		path, params := translatePath(route.Path)
		op := &Operation{
			Summary:     route.Handler,
			OperationID: getOperationID(route.Handler),
			Parameters:  params,
			Responses:   map[string]Response{},
			Security:    requirement,
		}
		if docs, ok := g.routeDocs[route.Method+" "+route.Path]; ok {
			applyDocs(op, docs, doc.Components.Schemas)
		}
		if len(op.Responses) == 0 {
			op.Responses["200"] = Response{Description: "Successful response"}
		}

		item := doc.Paths[path]
		if item == nil {
			item = &PathItem{}
			doc.Paths[path] = item
		}
		if slot := item.slot(route.Method); slot != nil {
			*slot = op
		}
	}

	return doc
}

func (p *PathItem) slot(method string) **Operation {
	switch method {
	case "GET":
		return &p.Get
	case "POST":
		return &p.Post
	case "PUT":
		return &p.Put
	case "DELETE":
		return &p.Delete
	case "PATCH":
		return &p.Patch
	case "HEAD":
		return &p.Head
	case "OPTIONS":
		return &p.Options
	}
	return nil
}

func applyDocs(op *Operation, docs RouteDocs, components map[string]*Schema) {
	if docs.Summary != "" {
		op.Summary = docs.Summary
	}
	op.Description = docs.Description
	if len(docs.Tags) > 0 {
		op.Tags = docs.Tags
	}
	if docs.Public {
		op.Security = nil
	}

	for _, q := range docs.Query {
		op.Parameters = append(op.Parameters, Parameter{
			Name:        q.Name,
			In:          "query",
			Description: q.Description,
			Required:    q.Required,
			Schema:      &Schema{Type: "string"},
		})
	}

	if docs.RequestBody != nil {
		op.RequestBody = &RequestBody{
			Required: true,
			Content:  jsonContent(GenerateSchema(docs.RequestBody)),
		}
	}

	for status, rd := range docs.Responses {
		resp := Response{Description: rd.Description}
		switch {
		case rd.Model != nil:
			s := componentRef(rd.Model, components)
			if rd.Example != nil {
				s = &Schema{AllOf: []*Schema{s}, Example: rd.Example}
			}
			resp.Content = jsonContent(s)
		case rd.Example != nil:
			resp.Content = jsonContent(&Schema{Example: rd.Example})
		}
		op.Responses[strconv.Itoa(status)] = resp
	}
}

func jsonContent(s *Schema) map[string]MediaType {
	return map[string]MediaType{"application/json": {Schema: s}}
}

// componentRef registers a named struct model under components.schemas and
// returns a reference to it. Anonymous and non-struct models stay inline.
func componentRef(model any, components map[string]*Schema) *Schema {
	t := reflect.TypeOf(model)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || t.Name() == "" {
		return GenerateSchema(model)
	}
	name := t.Name()
	if _, ok := components[name]; !ok {
		components[name] = GenerateSchema(model)
	}
	return &Schema{Ref: "#/components/schemas/" + name}
}

// requirement lists every scheme as an alternative
func (g *Generator) requirement() []map[string][]string {
	if len(g.security) == 0 {
		return nil
	}
	names := make([]string, 0, len(g.security))
	for name := range g.security {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]map[string][]string, len(names))
	for i, name := range names {
		out[i] = map[string][]string{name: {}}
	}
	return out
}

// translatePath turns /namespaces/:namespace into /namespaces/{namespace}
// and returns the path parameters it found
func translatePath(ginPath string) (string, []Parameter) {
	var params []Parameter
	segments := strings.Split(ginPath, "/")
	for i, seg := range segments {
		if seg == "" || (seg[0] != ':' && seg[0] != '*') {
			continue
		}
		name := seg[1:]
		segments[i] = "{" + name + "}"
		params = append(params, Parameter{
			Name:     name,
			In:       "path",
			Required: true,
			Schema:   &Schema{Type: "string"},
		})
	}
	return strings.Join(segments, "/"), params
}

var handlerNameCleaner = strings.NewReplacer("(", "", ")", "", "*", "", ".", "_")

// getOperationID turns ".../handler.(*APIHandler).GetFile-fm" into
// "handler_APIHandler_GetFile"
func getOperationID(handlerName string) string {
	name := handlerName[strings.LastIndex(handlerName, "/")+1:]
	name = strings.TrimSuffix(name, "-fm")
	return handlerNameCleaner.Replace(name)
}
