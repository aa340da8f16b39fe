// Package docs registers the OpenAPI description served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "tags": ["system"],
                "summary": "Health check",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "503": {"description": "Model breaker open", "schema": {"type": "object"}}
                }
            }
        },
        "/api/options": {
            "get": {
                "tags": ["ideas"],
                "summary": "Form options",
                "description": "Categories with colours, channels, goals, zones, card and year ranges",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.OptionsResponse"}}
                }
            }
        },
        "/api/ideas": {
            "post": {
                "tags": ["ideas"],
                "summary": "Research events and generate idea cards",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/types.IdeasRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.IdeasResponse"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/errors.Response"}},
                    "422": {"description": "Empty model result", "schema": {"$ref": "#/definitions/errors.Response"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/errors.Response"}},
                    "502": {"description": "Model call or parse failure", "schema": {"$ref": "#/definitions/errors.Response"}}
                }
            }
        },
        "/api/session": {
            "get": {
                "tags": ["ideas"],
                "summary": "Current workspace state",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.SessionResponse"}}
                }
            }
        },
        "/api/cards/{id}/refine": {
            "post": {
                "tags": ["cards"],
                "summary": "Refine one card",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/types.RefineRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.CardResponse"}},
                    "404": {"description": "Unknown card", "schema": {"$ref": "#/definitions/errors.Response"}},
                    "502": {"description": "Model call or parse failure", "schema": {"$ref": "#/definitions/errors.Response"}}
                }
            }
        },
        "/api/cards/{id}/publish/preview": {
            "post": {
                "tags": ["cards"],
                "summary": "Caption and schedule a card would be posted with",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {"in": "body", "name": "request", "schema": {"$ref": "#/definitions/types.PublishPreviewRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.PublishPreviewResponse"}},
                    "404": {"description": "Unknown card", "schema": {"$ref": "#/definitions/errors.Response"}}
                }
            }
        },
        "/api/cards/{id}/publish": {
            "post": {
                "tags": ["cards"],
                "summary": "Publish a card (not connected)",
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true}
                ],
                "responses": {
                    "501": {"description": "No publishing account", "schema": {"$ref": "#/definitions/errors.Response"}}
                }
            }
        },
        "/api/calendar/{year}": {
            "post": {
                "tags": ["calendar"],
                "summary": "Build the annual event calendar",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "year", "type": "integer", "required": true},
                    {"in": "query", "name": "refresh", "type": "boolean"},
                    {"in": "body", "name": "request", "schema": {"$ref": "#/definitions/types.CalendarRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.CalendarResponse"}},
                    "400": {"description": "Year out of range", "schema": {"$ref": "#/definitions/errors.Response"}},
                    "502": {"description": "Model call or parse failure", "schema": {"$ref": "#/definitions/errors.Response"}}
                }
            }
        },
        "/api/calendar/{year}/export": {
            "get": {
                "tags": ["calendar"],
                "summary": "Download a built calendar",
                "produces": [
                    "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
                    "text/csv",
                    "text/calendar"
                ],
                "parameters": [
                    {"in": "path", "name": "year", "type": "integer", "required": true},
                    {"in": "query", "name": "format", "type": "string", "enum": ["xlsx", "csv", "ics"]}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "404": {"description": "Calendar not built yet", "schema": {"$ref": "#/definitions/errors.Response"}}
                }
            }
        }
    },
    "definitions": {
        "errors.Response": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "category": {"type": "string"},
                "request_id": {"type": "string"}
            }
        },
        "types.IdeasRequest": {
            "type": "object",
            "required": ["brand"],
            "properties": {
                "brand": {"type": "string", "example": "오뚜기 진라면"},
                "target_date": {"type": "string", "example": "2025-06-05"},
                "country": {"type": "string", "example": "대한민국"},
                "channels": {"type": "array", "items": {"type": "string"}},
                "count": {"type": "integer", "example": 6},
                "creativity": {"type": "number", "example": 0.6}
            }
        },
        "types.IdeasResponse": {
            "type": "object",
            "properties": {
                "batch_id": {"type": "string"},
                "label": {"type": "string"},
                "cards": {"type": "array", "items": {"$ref": "#/definitions/ideation.Card"}},
                "groups": {"type": "array", "items": {"type": "object"}},
                "injected": {"type": "integer"},
                "from_almanac": {"type": "boolean"},
                "fallback": {"type": "boolean"},
                "warning": {"type": "string"}
            }
        },
        "ideation.Card": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "image_concept": {"type": "string"},
                "copy_draft_ko": {"type": "string"},
                "copy_draft_local": {"type": "string"},
                "recommended_channels": {"type": "array", "items": {"type": "string"}},
                "fit_goals": {"type": "array", "items": {"type": "string"}},
                "targeted_events": {"type": "array", "items": {"type": "object"}},
                "rationale": {"type": "string"},
                "expected_impact": {"type": "string"},
                "specific_entities": {"type": "array", "items": {"type": "string"}},
                "specificity_confidence": {"type": "number"},
                "confidence": {"type": "number"}
            }
        },
        "types.SessionResponse": {
            "type": "object",
            "properties": {
                "operation": {"type": "object"},
                "last_error": {"type": "string"},
                "snapshot": {"type": "object"},
                "groups": {"type": "array", "items": {"type": "object"}},
                "total_events": {"type": "integer"},
                "cards": {"type": "array", "items": {"$ref": "#/definitions/ideation.Card"}},
                "calendar_years": {"type": "array", "items": {"type": "integer"}}
            }
        },
        "types.RefineRequest": {
            "type": "object",
            "required": ["instruction"],
            "properties": {
                "instruction": {"type": "string", "example": "더 유머러스하게, 해시태그 3개 추가"},
                "creativity": {"type": "number"}
            }
        },
        "types.CardResponse": {
            "type": "object",
            "properties": {
                "card": {"$ref": "#/definitions/ideation.Card"},
                "label": {"type": "string"}
            }
        },
        "types.PublishPreviewRequest": {
            "type": "object",
            "properties": {
                "use_local": {"type": "boolean"},
                "date": {"type": "string", "example": "2025-06-05"},
                "time": {"type": "string", "example": "07:15"},
                "zone": {"type": "string", "example": "America/New_York"},
                "platform": {"type": "string", "example": "Instagram"}
            }
        },
        "types.PublishPreviewResponse": {
            "type": "object",
            "properties": {
                "card_id": {"type": "string"},
                "caption": {"type": "string"},
                "platform": {"type": "string"},
                "date": {"type": "string"},
                "conversion": {"type": "object"},
                "label": {"type": "string"}
            }
        },
        "types.OptionsResponse": {
            "type": "object",
            "properties": {
                "categories": {"type": "array", "items": {"type": "object"}},
                "channels": {"type": "array", "items": {"type": "string"}},
                "default_channels": {"type": "array", "items": {"type": "string"}},
                "goals": {"type": "array", "items": {"type": "string"}},
                "zones": {"type": "array", "items": {"type": "string"}},
                "default_country": {"type": "string"},
                "reference_zone": {"type": "string"},
                "default_clock": {"type": "string"},
                "model": {"type": "string"},
                "creativity": {"type": "number"},
                "min_cards": {"type": "integer"},
                "max_cards": {"type": "integer"},
                "default_cards": {"type": "integer"},
                "min_year": {"type": "integer"},
                "max_year": {"type": "integer"},
                "default_year": {"type": "integer"},
                "formats": {"type": "array", "items": {"type": "string"}}
            }
        },
        "types.CalendarRequest": {
            "type": "object",
            "properties": {
                "country": {"type": "string", "example": "대한민국"}
            }
        },
        "types.CalendarResponse": {
            "type": "object",
            "properties": {
                "year": {"type": "integer"},
                "country": {"type": "string"},
                "label": {"type": "string"},
                "injected": {"type": "integer"},
                "rows": {"type": "array", "items": {"type": "object"}},
                "generated_at": {"type": "string"},
                "cached": {"type": "boolean"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "dev",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Marcom Ideamaker API",
	Description:      "Event research, idea cards and annual calendars for social marketing.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
