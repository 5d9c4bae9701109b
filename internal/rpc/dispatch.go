package rpc

// Method tables, SMD descriptions and Invoke for the services. They follow
// the layout zenrpc's generator emits and are kept by hand, so a new method
// has to be added to RPC, SMD and Invoke together.

import (
	"context"
	"encoding/json"

	"github.com/vmkteam/zenrpc/v2"
	"github.com/vmkteam/zenrpc/v2/smd"
)

var RPC = struct {
	ArticleService   struct{ List, Count, ByID, Categories string }
	InterviewService struct{ List, ByID string }
}{
	ArticleService: struct{ List, Count, ByID, Categories string }{
		List:       "list",
		Count:      "count",
		ByID:       "byid",
		Categories: "categories",
	},
	InterviewService: struct{ List, ByID string }{
		List: "list",
		ByID: "byid",
	},
}

var articleProperties = smd.PropertyList{
	{Name: "id", Type: smd.Integer},
	{Name: "date", Type: smd.String},
	{Name: "timestamp", Type: smd.String},
	{Name: "category", Type: smd.String},
	{Name: "title", Type: smd.String},
	{Name: "content", Type: smd.String},
	{Name: "image", Type: smd.String, Optional: true},
	{Name: "isNew", Type: smd.Boolean},
}

var interviewProperties = smd.PropertyList{
	{Name: "id", Type: smd.Integer},
	{Name: "title", Type: smd.String},
	{Name: "staffName", Type: smd.String},
	{Name: "position", Type: smd.String},
	{Name: "joinDate", Type: smd.String},
	{Name: "labels", Type: smd.Array, Items: map[string]string{"type": smd.String}},
	{Name: "content", Type: smd.String},
	{Name: "image", Type: smd.String, Optional: true},
	{Name: "createdAt", Type: smd.String},
}

func (ArticleService) SMD() smd.ServiceInfo {
	return smd.ServiceInfo{
		Methods: map[string]smd.Service{
			"List": {
				Description: `List retrieves articles newest first with optional category filtering and pagination.`,
				Parameters: []smd.JSONSchema{
					{
						Name:        "filter",
						Description: `article filter`,
						Type:        smd.Object,
						Properties: smd.PropertyList{
							{Name: "category", Description: `optional category filter`, Optional: true, Type: smd.String},
							{Name: "page", Description: `page number (1-based)`, Optional: true, Type: smd.Integer},
							{Name: "pageSize", Description: `items per page, at most 100`, Optional: true, Type: smd.Integer},
						},
					},
				},
				Returns: smd.JSONSchema{
					Description: `list of articles`,
					Type:        smd.Array,
					Items:       map[string]string{"$ref": "#/definitions/Article"},
					Definitions: map[string]smd.Definition{
						"Article": {Type: "object", Properties: articleProperties},
					},
				},
				Errors: map[int]string{
					400: "page and pageSize must be positive",
					500: "internal server error",
				},
			},
			"Count": {
				Description: `Count returns the number of articles, optionally within one category.`,
				Parameters: []smd.JSONSchema{
					{Name: "category", Description: `optional category filter`, Optional: true, Type: smd.String},
				},
				Returns: smd.JSONSchema{
					Description: `count of articles`,
					Type:        smd.Integer,
				},
				Errors: map[int]string{
					500: "internal server error",
				},
			},
			"ByID": {
				Description: `ByID retrieves a single article.`,
				Parameters: []smd.JSONSchema{
					{Name: "id", Description: `article id`, Type: smd.Integer},
				},
				Returns: smd.JSONSchema{
					Description: `article`,
					Optional:    true,
					Type:        smd.Object,
					Properties:  articleProperties,
				},
				Errors: map[int]string{
					400: "id must be positive",
					404: "article not found",
					500: "internal server error",
				},
			},
			"Categories": {
				Description: `Categories lists the distinct article categories in order of first appearance.`,
				Parameters:  []smd.JSONSchema{},
				Returns: smd.JSONSchema{
					Description: `list of categories`,
					Type:        smd.Array,
					Items:       map[string]string{"type": smd.String},
				},
				Errors: map[int]string{
					500: "internal server error",
				},
			},
		},
	}
}

// Invoke decodes params for method and calls it.
func (s ArticleService) Invoke(ctx context.Context, method string, params json.RawMessage) zenrpc.Response {
	resp := zenrpc.Response{}
	var err error

	switch method {
	case RPC.ArticleService.List:
		var args = struct {
			Filter ArticleFilter `json:"filter"`
		}{}

		if zenrpc.IsArray(params) {
			if params, err = zenrpc.ConvertToObject([]string{"filter"}, params); err != nil {
				return zenrpc.NewResponseError(nil, zenrpc.InvalidParams, "", err.Error())
			}
		}

		if len(params) > 0 {
			if err := json.Unmarshal(params, &args); err != nil {
				return zenrpc.NewResponseError(nil, zenrpc.InvalidParams, "", err.Error())
			}
		}

		resp.Set(s.List(ctx, args.Filter))

	case RPC.ArticleService.Count:
		var args = struct {
			Category *string `json:"category"`
		}{}

		if zenrpc.IsArray(params) {
			if params, err = zenrpc.ConvertToObject([]string{"category"}, params); err != nil {
				return zenrpc.NewResponseError(nil, zenrpc.InvalidParams, "", err.Error())
			}
		}

		if len(params) > 0 {
			if err := json.Unmarshal(params, &args); err != nil {
				return zenrpc.NewResponseError(nil, zenrpc.InvalidParams, "", err.Error())
			}
		}

		resp.Set(s.Count(ctx, args.Category))

	case RPC.ArticleService.ByID:
		var args = struct {
			Id int `json:"id"`
		}{}

		if zenrpc.IsArray(params) {
			if params, err = zenrpc.ConvertToObject([]string{"id"}, params); err != nil {
				return zenrpc.NewResponseError(nil, zenrpc.InvalidParams, "", err.Error())
			}
		}

		if len(params) > 0 {
			if err := json.Unmarshal(params, &args); err != nil {
				return zenrpc.NewResponseError(nil, zenrpc.InvalidParams, "", err.Error())
			}
		}

		resp.Set(s.ByID(ctx, args.Id))

	case RPC.ArticleService.Categories:
		resp.Set(s.Categories(ctx))

	default:
		resp = zenrpc.NewResponseError(nil, zenrpc.MethodNotFound, "", nil)
	}

	return resp
}

func (InterviewService) SMD() smd.ServiceInfo {
	return smd.ServiceInfo{
		Methods: map[string]smd.Service{
			"List": {
				Description: `List retrieves interviews newest first by createdAt.`,
				Parameters: []smd.JSONSchema{
					{Name: "limit", Description: `maximum number of interviews, 0 for all`, Optional: true, Type: smd.Integer},
					{Name: "label", Description: `optional label filter`, Optional: true, Type: smd.String},
				},
				Returns: smd.JSONSchema{
					Description: `list of interviews`,
					Type:        smd.Array,
					Items:       map[string]string{"$ref": "#/definitions/Interview"},
					Definitions: map[string]smd.Definition{
						"Interview": {Type: "object", Properties: interviewProperties},
					},
				},
				Errors: map[int]string{
					500: "internal server error",
				},
			},
			"ByID": {
				Description: `ByID retrieves a single interview.`,
				Parameters: []smd.JSONSchema{
					{Name: "id", Description: `interview id`, Type: smd.Integer},
				},
				Returns: smd.JSONSchema{
					Description: `interview`,
					Optional:    true,
					Type:        smd.Object,
					Properties:  interviewProperties,
				},
				Errors: map[int]string{
					400: "id must be positive",
					404: "interview not found",
					500: "internal server error",
				},
			},
		},
	}
}

// Invoke decodes params for method and calls it.
func (s InterviewService) Invoke(ctx context.Context, method string, params json.RawMessage) zenrpc.Response {
	resp := zenrpc.Response{}
	var err error

	switch method {
	case RPC.InterviewService.List:
		var args = struct {
			Limit *int    `json:"limit"`
			Label *string `json:"label"`
		}{}

		if zenrpc.IsArray(params) {
			if params, err = zenrpc.ConvertToObject([]string{"limit", "label"}, params); err != nil {
				return zenrpc.NewResponseError(nil, zenrpc.InvalidParams, "", err.Error())
			}
		}

		if len(params) > 0 {
			if err := json.Unmarshal(params, &args); err != nil {
				return zenrpc.NewResponseError(nil, zenrpc.InvalidParams, "", err.Error())
			}
		}

		//zenrpc:limit=0
		if args.Limit == nil {
			var v int = 0
			args.Limit = &v
		}

		resp.Set(s.List(ctx, args.Limit, args.Label))

	case RPC.InterviewService.ByID:
		var args = struct {
			Id int `json:"id"`
		}{}

		if zenrpc.IsArray(params) {
			if params, err = zenrpc.ConvertToObject([]string{"id"}, params); err != nil {
				return zenrpc.NewResponseError(nil, zenrpc.InvalidParams, "", err.Error())
			}
		}

		if len(params) > 0 {
			if err := json.Unmarshal(params, &args); err != nil {
				return zenrpc.NewResponseError(nil, zenrpc.InvalidParams, "", err.Error())
			}
		}

		resp.Set(s.ByID(ctx, args.Id))

	default:
		resp = zenrpc.NewResponseError(nil, zenrpc.MethodNotFound, "", nil)
	}

	return resp
}
