package api

import (
	"fmt"

	"github.com/fieldscope/verity/internal/config"
	"github.com/fieldscope/verity/pkg/openapi"
)

// buildSpec assembles the OpenAPI document for the API surface. The spec is
// serialized once at module construction and served as static bytes.
func buildSpec(cfg *config.Config) ([]byte, error) {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)

	spec.Components.AddSchemas(map[string]*openapi.Schema{
		"AnswerRecord": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"question_id": {Type: "string"},
				"question":    {Type: "string"},
				"value":       {Type: "array", Items: &openapi.Schema{Type: "string"}},
				"skipped":     {Type: "boolean"},
				"latency_ms":  {Type: "integer"},
			},
		},
		"Response": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":               {Type: "string", Format: "uuid"},
				"survey_id":        {Type: "string", Format: "uuid"},
				"mode":             {Type: "string", Enum: []any{"capi", "cati", "online"}},
				"answers":          {Type: "array", Items: openapi.SchemaRef("AnswerRecord")},
				"duration_seconds": {Type: "integer"},
				"status":           {Type: "string", Enum: []any{"pending_approval", "approved", "rejected"}},
				"audio_ref":        {Type: "string"},
				"call_id":          {Type: "string"},
				"phone":            {Type: "string"},
				"gender":           {Type: "string"},
				"age":              {Type: "integer"},
				"interviewer":      {Type: "string"},
				"submitted_at":     {Type: "string", Format: "date-time"},
			},
		},
		"CreateResponse": {
			Type:     "object",
			Required: []string{"survey_id", "mode"},
			Properties: map[string]*openapi.Schema{
				"survey_id":        {Type: "string", Format: "uuid"},
				"mode":             {Type: "string", Enum: []any{"capi", "cati", "online"}},
				"answers":          {Type: "array", Items: openapi.SchemaRef("AnswerRecord")},
				"duration_seconds": {Type: "integer"},
				"audio_ref":        {Type: "string"},
				"call_id":          {Type: "string"},
				"phone":            {Type: "string"},
				"gender":           {Type: "string"},
				"age":              {Type: "integer"},
				"interviewer":      {Type: "string"},
			},
		},
		"ClaimFilters": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"search":  {Type: "string"},
				"gender":  {Type: "string"},
				"mode":    {Type: "string"},
				"min_age": {Type: "integer"},
				"max_age": {Type: "integer"},
			},
		},
		"Grant": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"response":   openapi.SchemaRef("Response"),
				"expires_at": {Type: "string", Format: "date-time"},
			},
		},
		"VerificationForm": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"audio_status":         {Type: "string"},
				"gender_match":         {Type: "string"},
				"upcoming_vote_match":  {Type: "string"},
				"assembly_vote_match":  {Type: "string"},
				"general_vote_match":   {Type: "string"},
				"name_match":           {Type: "string"},
				"age_match":            {Type: "string"},
				"phone_asked":          {Type: "string"},
				"feedback":             {Type: "string"},
			},
		},
		"Verification": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":          {Type: "string", Format: "uuid"},
				"response_id": {Type: "string", Format: "uuid"},
				"outcome":     {Type: "string", Enum: []any{"approved", "rejected"}},
				"criteria":    {Type: "object"},
				"feedback":    {Type: "string"},
				"verified_by": {Type: "string"},
				"verified_at": {Type: "string", Format: "date-time"},
			},
		},
		"Playback": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"response_id":  {Type: "string", Format: "uuid"},
				"kind":         {Type: "string", Enum: []any{"url", "recording"}},
				"url":          {Type: "string"},
				"content_type": {Type: "string"},
				"expires_at":   {Type: "string", Format: "date-time"},
			},
		},
		"SessionStatus": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"state":             {Type: "string", Enum: []any{"idle", "requesting", "active"}},
				"response_id":       {Type: "string", Format: "uuid"},
				"remaining_seconds": {Type: "integer"},
			},
		},
	})

	spec.Paths["/responses"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List responses",
			Tags:    []string{"responses"},
			Parameters: []*openapi.Parameter{
				openapi.QueryParam("page", "integer", "Page number (1-indexed)", false),
				openapi.QueryParam("page_size", "integer", "Results per page", false),
				openapi.QueryParam("search", "string", "Search phone or interviewer", false),
				openapi.QueryParam("status", "string", "Filter by verification status", false),
				openapi.QueryParam("mode", "string", "Filter by interview mode", false),
			},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Paginated responses", "Response"),
			},
		},
		Post: &openapi.Operation{
			Summary:     "Create response",
			Tags:        []string{"responses"},
			RequestBody: openapi.RequestBodyJSON("CreateResponse", true),
			Responses: map[int]*openapi.Response{
				201: openapi.ResponseJSON("Created response", "Response"),
				400: openapi.ResponseRef("BadRequest"),
				409: openapi.ResponseRef("Conflict"),
			},
		},
	}

	spec.Paths["/responses/search"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Search responses",
			Tags:        []string{"responses"},
			RequestBody: openapi.RequestBodyJSON("PageRequest", true),
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Paginated responses", "Response"),
			},
		},
	}

	spec.Paths["/responses/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Find response",
			Tags:       []string{"responses"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Response identifier")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Response", "Response"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/responses/{id}/media"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Resolve playback audio",
			Tags:       []string{"media"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Response identifier")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Playback descriptor or recording bytes", "Playback"),
				404: openapi.ResponseRef("NotFound"),
				422: openapi.ResponseRef("Unprocessable"),
			},
		},
	}

	spec.Paths["/review/next"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Claim next assignment",
			Tags:        []string{"review"},
			RequestBody: openapi.RequestBodyJSON("ClaimFilters", false),
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Granted assignment", "Grant"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/review/{id}/release"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:    "Release assignment",
			Tags:       []string{"review"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Response identifier")},
			Responses: map[int]*openapi.Response{
				204: {Description: "Lease released"},
			},
		},
	}

	spec.Paths["/review/{id}/submit"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Submit verification",
			Tags:        []string{"review"},
			Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Response identifier")},
			RequestBody: openapi.RequestBodyJSON("VerificationForm", true),
			Responses: map[int]*openapi.Response{
				201: openapi.ResponseJSON("Stored verification", "Verification"),
				409: openapi.ResponseRef("Conflict"),
				422: openapi.ResponseRef("Unprocessable"),
			},
		},
	}

	spec.Paths["/review/{id}/verification"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Find verification",
			Tags:       []string{"review"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Response identifier")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Stored verification", "Verification"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/review/session"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "Current session state",
			Tags:    []string{"review"},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Session snapshot", "SessionStatus"),
			},
		},
	}

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		return nil, fmt.Errorf("marshal openapi spec: %w", err)
	}
	return data, nil
}
