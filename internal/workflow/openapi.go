package workflow

import (
	"net/http"

	"github.com/JaimeStill/pitchcraft/internal/projects"
	"github.com/JaimeStill/pitchcraft/pkg/openapi"
)

var projectID = openapi.PathParam("id", "Project UUID")

var spec = struct {
	List, Create, Stats, Find     *openapi.Operation
	SetProfile, Enrich, Narrative *openapi.Operation
	Presentation, Export          *openapi.Operation
	Objections, Pipeline          *openapi.Operation
}{
	List: (&openapi.Operation{
		OperationID: "listProjects",
		Summary:     "List projects",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("page", "integer", "Page number, 1-indexed", false),
			openapi.QueryParam("page_size", "integer", "Results per page", false),
			openapi.QueryParam("search", "string", "Substring match on title and description", false),
			openapi.QueryParam("sort", "string", "Comma-separated fields, - prefix for descending", false),
			openapi.QueryParam("status", "string", "Comma-separated workflow stages", false),
			openapi.QueryParam("project_type", "string", "Exact project type", false),
		},
		Responses: map[int]*openapi.Response{
			http.StatusOK: openapi.ResponseJSON("Page of projects", "ProjectPage"),
		},
	}).WithErrors(http.StatusBadRequest),

	Create: (&openapi.Operation{
		OperationID: "createProject",
		Summary:     "Create a project",
		RequestBody: openapi.RequestBodyJSON("CreateProject", true),
		Responses: map[int]*openapi.Response{
			http.StatusCreated: openapi.ResponseJSON("Created project", "Project"),
		},
	}).WithErrors(http.StatusBadRequest, http.StatusConflict),

	Stats: &openapi.Operation{
		OperationID: "projectStats",
		Summary:     "Count projects per workflow stage",
		Responses: map[int]*openapi.Response{
			http.StatusOK: openapi.ResponseJSON("Counts keyed by status", "StatusCounts"),
		},
	},

	Find: (&openapi.Operation{
		OperationID: "getProject",
		Summary:     "Get a project",
		Parameters: []*openapi.Parameter{
			projectID,
			openapi.QueryParam("expand", "boolean", "Include profile, narrative, presentation, and objections", false),
		},
		Responses: map[int]*openapi.Response{
			http.StatusOK: openapi.ResponseJSON("Project", "ProjectView"),
		},
	}).WithErrors(http.StatusBadRequest, http.StatusNotFound),

	SetProfile: stage("setProfile", "Set the client profile", "UpdateProfile", "ProjectView",
		http.StatusBadRequest, http.StatusNotFound, http.StatusConflict),

	Enrich: stage("enrichProfile", "Enrich the client profile from external sources", "", "ProjectView",
		http.StatusNotFound, http.StatusConflict, http.StatusPreconditionFailed, http.StatusBadGateway),

	Narrative: stage("generateNarrative", "Generate the six-section narrative", "", "ProjectView",
		http.StatusNotFound, http.StatusConflict, http.StatusPreconditionFailed, http.StatusBadGateway),

	Presentation: stage("generatePresentation", "Build slides from the current narrative", "TitleRequest", "ProjectView",
		http.StatusNotFound, http.StatusConflict, http.StatusPreconditionFailed),

	Export: (&openapi.Operation{
		OperationID: "exportPresentation",
		Summary:     "Download the archived presentation snapshot",
		Parameters:  []*openapi.Parameter{projectID},
		Responses: map[int]*openapi.Response{
			http.StatusOK: openapi.ResponseJSON("Presentation snapshot attachment", "Presentation"),
		},
	}).WithErrors(http.StatusBadRequest, http.StatusNotFound, http.StatusPreconditionFailed),

	Objections: stage("simulateObjections", "Simulate buyer objections and rebuttals", "", "ProjectView",
		http.StatusNotFound, http.StatusConflict, http.StatusPreconditionFailed, http.StatusBadGateway),

	Pipeline: stage("runPipeline", "Run every remaining stage", "TitleRequest", "ProjectView",
		http.StatusNotFound, http.StatusConflict, http.StatusPreconditionFailed, http.StatusBadGateway),
}

func stage(id, summary, body, result string, errs ...int) *openapi.Operation {
	op := &openapi.Operation{
		OperationID: id,
		Summary:     summary,
		Parameters:  []*openapi.Parameter{projectID},
		Responses: map[int]*openapi.Response{
			http.StatusOK: openapi.ResponseJSON("Updated project", result),
		},
	}
	if body != "" {
		op.RequestBody = openapi.RequestBodyJSON(body, false)
	}
	return op.WithErrors(append(errs, http.StatusBadRequest)...)
}

func text(description string) *openapi.Schema {
	return &openapi.Schema{Type: "string", Description: description}
}

var timestamp = &openapi.Schema{Type: "string", Format: "date-time"}

var schemas = map[string]*openapi.Schema{
	"CreateProject": {
		Type:     "object",
		Required: []string{"title"},
		Properties: map[string]*openapi.Schema{
			"title":           text("Project title"),
			"description":     text("What is being sold"),
			"project_type":    openapi.StringEnum("Defaults to pitch_vendas", projects.ProjectTypes()...),
			"target_audience": text("Intended audience"),
		},
	},
	"UpdateProfile": {
		Type:     "object",
		Required: []string{"company_name"},
		Properties: map[string]*openapi.Schema{
			"company_name": text("Prospect company"),
			"industry":     text("Industry, used to infer the DISC profile when none is given"),
			"size": openapi.StringEnum("Company size",
				projects.SizeStartup, projects.SizeSmall, projects.SizeMedium, projects.SizeLarge, projects.SizeEnterprise),
			"pain_points":     text("Newline-separated pain points"),
			"goals":           text("Client goals"),
			"website":         text("Public website, used by enrichment"),
			"disc_profile":    openapi.StringEnum("Behavioral profile", projects.DISCDominance, projects.DISCInfluence, projects.DISCSteadiness, projects.DISCCompliance),
			"decision_makers": openapi.ArrayOf(text("Name or role")),
		},
	},
	"TitleRequest": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"title": text("Deck title; defaults to \"Apresentação - {project title}\""),
		},
	},
	"Project": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":              {Type: "string", Format: "uuid"},
			"title":           text(""),
			"description":     text(""),
			"project_type":    openapi.StringEnum("", projects.ProjectTypes()...),
			"target_audience": text(""),
			"status":          openapi.StringEnum("Workflow stage", projects.Statuses()...),
			"created_at":      timestamp,
			"updated_at":      timestamp,
		},
	},
	"ProjectView": {
		Type:        "object",
		Description: "Project fields plus children when expanded",
		Properties: map[string]*openapi.Schema{
			"id":             {Type: "string", Format: "uuid"},
			"status":         openapi.StringEnum("Workflow stage", projects.Statuses()...),
			"client_profile": {Type: "object"},
			"narrative":      openapi.SchemaRef("Narrative"),
			"presentation":   openapi.SchemaRef("Presentation"),
			"objections": {
				Type: "object",
				Properties: map[string]*openapi.Schema{
					"objections":   openapi.ArrayOf(openapi.SchemaRef("Objection")),
					"partial":      {Type: "boolean"},
					"generated_at": timestamp,
				},
			},
		},
	},
	"ProjectPage": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"data":        openapi.ArrayOf(openapi.SchemaRef("Project")),
			"total":       {Type: "integer"},
			"page":        {Type: "integer"},
			"page_size":   {Type: "integer"},
			"total_pages": {Type: "integer"},
		},
	},
	"StatusCounts": {
		Type:                 "object",
		AdditionalProperties: &openapi.Schema{Type: "integer"},
	},
	"Narrative": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"introduction":      text(""),
			"problem_statement": text(""),
			"solution_overview": text(""),
			"benefits":          text(""),
			"social_proof":      text(""),
			"call_to_action":    text(""),
			"generated_at":      timestamp,
			"partial":           {Type: "boolean", Description: "Set when a section failed to generate"},
			"failed_sections":   openapi.ArrayOf(openapi.StringEnum("", projects.Sections()...)),
		},
	},
	"Presentation": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":                {Type: "string", Format: "uuid"},
			"title":             text(""),
			"slides":            openapi.ArrayOf(openapi.SchemaRef("Slide")),
			"total_slides":      {Type: "integer"},
			"estimated_minutes": {Type: "integer"},
			"narrative":         openapi.SchemaRef("Narrative"),
			"created_at":        timestamp,
		},
	},
	"Slide": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id": {Type: "integer", Description: "1-based position"},
			"type": openapi.StringEnum("Source section",
				projects.SlideIntro, projects.SlideProblem, projects.SlideSolution,
				projects.SlideBenefits, projects.SlideProof, projects.SlideCTA),
			"title":   text(""),
			"content": text(""),
		},
	},
	"Objection": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"objection_text":    text(""),
			"rebuttal_text":     text(""),
			"source_pain_point": text("Pain point the objection was seeded from"),
			"category": openapi.StringEnum("",
				projects.CategoryPrice, projects.CategoryTiming, projects.CategoryAuthority,
				projects.CategoryNeed, projects.CategoryOther),
			"confidence_score": {Type: "number", Description: "Model confidence in the rebuttal, 0 to 1"},
		},
	},
}
