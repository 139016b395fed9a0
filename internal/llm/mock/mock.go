// Package mock implements a deterministic llm.Client for tests and dry runs.
// Replies can be scripted in order; once the script is exhausted a handler
// (or the built-in dry-run generator) produces the output.
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gosimple/slug"

	"github.com/verustcode/docsynth/internal/llm"
)

// ClientName is the identifier for the Mock client
const ClientName = "mock"

func init() {
	llm.Register(ClientName, NewClient)
}

// Handler produces the raw content for a request
type Handler func(ctx context.Context, req *llm.Request) (string, error)

// reply is one scripted answer
type reply struct {
	content string
	err     error
}

// Client implements the llm.Client interface with scripted responses
type Client struct {
	*llm.BaseClient

	mu      sync.Mutex
	script  []reply
	handler Handler
	calls   []llm.Request
}

// NewClient creates a new Mock client
func NewClient(config *llm.ClientConfig) (llm.Client, error) {
	return New(config), nil
}

// New creates a Mock client with its concrete type, for scripting in tests
func New(config *llm.ClientConfig) *Client {
	if config == nil {
		config = llm.NewClientConfig(ClientName)
	}
	if config.DefaultModel == "" {
		config.DefaultModel = "mock-model"
	}
	return &Client{
		BaseClient: llm.NewBaseClient(config),
	}
}

// Enqueue appends raw replies returned by subsequent Execute calls
func (c *Client) Enqueue(contents ...string) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, content := range contents {
		c.script = append(c.script, reply{content: content})
	}
	return c
}

// EnqueueJSON marshals each value and enqueues it as a reply
func (c *Client) EnqueueJSON(values ...interface{}) *Client {
	for _, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			panic(fmt.Sprintf("mock: cannot marshal scripted reply: %v", err))
		}
		c.Enqueue(string(data))
	}
	return c
}

// EnqueueError makes the next Execute call fail with err
func (c *Client) EnqueueError(err error) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.script = append(c.script, reply{err: err})
	return c
}

// SetHandler installs the handler used once the script is exhausted
func (c *Client) SetHandler(h Handler) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = h
	return c
}

// Calls returns copies of every request received, before preparation
func (c *Client) Calls() []llm.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]llm.Request, len(c.calls))
	copy(out, c.calls)
	return out
}

// CallCount returns the number of Execute calls
func (c *Client) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

// Remaining returns the number of unconsumed scripted replies
func (c *Client) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.script)
}

// Available always returns true for mock client
func (c *Client) Available() bool {
	return true
}

// Execute returns the next scripted reply, or the handler's output
func (c *Client) Execute(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	startTime := time.Now()

	prepared, err := c.PrepareRequest(req)
	if err != nil {
		return nil, err
	}
	c.LogRequest(prepared, "execute")

	if err := ctx.Err(); err != nil {
		return nil, llm.NewClientError(ClientName, "execute", "context done", err)
	}

	c.mu.Lock()
	c.calls = append(c.calls, *req)
	var next *reply
	if len(c.script) > 0 {
		next = &c.script[0]
		c.script = c.script[1:]
	}
	handler := c.handler
	c.mu.Unlock()

	var content string
	switch {
	case next != nil && next.err != nil:
		err = next.err
	case next != nil:
		content = next.content
	case handler != nil:
		content, err = handler(ctx, req)
	default:
		content, err = DryRun(ctx, req)
	}
	if err != nil {
		c.LogResponse(nil, time.Since(startTime), err)
		return nil, err
	}

	resp := c.BuildResponse(content, prepared.Model, prepared.ResponseSchema)
	if prepared.Options != nil {
		for k, v := range prepared.Options.Metadata {
			resp.Metadata[k] = v
		}
	}

	c.LogResponse(resp, time.Since(startTime), nil)
	return resp, nil
}

// Close releases any resources held by the client
func (c *Client) Close() error {
	return nil
}

// DryRun is the built-in handler. It shapes plausible output from request
// metadata so the whole pipeline can run offline. Output depends only on the
// request, never on time or global state.
func DryRun(_ context.Context, req *llm.Request) (string, error) {
	var v interface{}
	switch req.GetMetadata(llm.MetaStage) {
	case "tool":
		v = dryRunTool(req.Prompt)
	case "toc":
		v = dryRunTOC(req.GetMetadata(llm.MetaDocumentType))
	case "section":
		v = dryRunSection(req)
	default:
		return "mock response: " + firstLine(req.Prompt), nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

var (
	toolNames  = []string{"Pixelweave Studio", "Ledgerly", "Tidepool Analytics", "Northwind Sync", "Quillbase", "Orbit Desk"}
	categories = []string{"Design", "Finance", "Analytics", "Productivity", "Documentation", "Customer Support"}
	userBases  = []string{"small agencies", "freelancers", "enterprise teams", "students", "healthcare providers"}
	issueKinds = []string{"typo", "contradiction", "inconsistent terminology", "ambiguity"}
)

func pick(items []string, key string) string {
	h := fnv.New32a()
	h.Write([]byte(key))
	return items[h.Sum32()%uint32(len(items))]
}

func dryRunTool(prompt string) map[string]string {
	name := pick(toolNames, prompt)
	return map[string]string{
		"name":      name,
		"purpose":   "helps " + pick(userBases, prompt+"u") + " manage their work with " + strings.ToLower(name),
		"category":  pick(categories, prompt+"c"),
		"user_base": pick(userBases, prompt+"u"),
	}
}

type dryRunNode struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Subsections []dryRunNode `json:"subsections"`
}

func dryRunTOC(documentType string) map[string]interface{} {
	if documentType == "" {
		documentType = "Document"
	}
	prefix := strings.ReplaceAll(slug.Make(documentType), "-", "_")
	node := func(id, title string, children ...dryRunNode) dryRunNode {
		if children == nil {
			children = []dryRunNode{}
		}
		return dryRunNode{ID: prefix + "_" + id, Title: title, Subsections: children}
	}
	return map[string]interface{}{
		"id":    prefix,
		"title": documentType,
		"sections": []dryRunNode{
			node("introduction", "Introduction",
				node("scope", "Scope"),
			),
			node("terms", "Key Terms",
				node("definitions", "Definitions"),
				node("interpretation", "Interpretation"),
			),
			node("obligations", "Obligations"),
			node("contact", "Contact Information"),
		},
	}
}

func dryRunSection(req *llm.Request) map[string]interface{} {
	title := req.GetMetadata(llm.MetaSectionTitle)
	if title == "" {
		title = "Section"
	}
	level, _ := strconv.Atoi(req.GetMetadata(llm.MetaSectionLevel))
	heading := level + 1
	if heading < 2 {
		heading = 2
	}
	if heading > 6 {
		heading = 6
	}

	out := map[string]interface{}{
		"content": fmt.Sprintf("<h%d>%s</h%d>\n<p>This section describes %s.</p>",
			heading, title, heading, strings.ToLower(title)),
	}
	if req.GetMetadata(llm.MetaIssuePlanned) == "true" {
		kind := pick(issueKinds, req.GetMetadata(llm.MetaSectionID))
		out["issue"] = map[string]string{
			"description": fmt.Sprintf("A %s was introduced in the %s section.", kind, strings.ToLower(title)),
			"severity":    "low",
		}
	}
	return out
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
