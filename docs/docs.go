// Package docs registers the OpenAPI description of the HTTP API.
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
        "/api/v1/databases": {
            "get": {
                "produces": ["application/json"],
                "tags": ["selectors"],
                "summary": "List selectable databases",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {"$ref": "#/definitions/controller.Option"}
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {"$ref": "#/definitions/routes.errorResponse"}
                    },
                    "502": {
                        "description": "Bad Gateway",
                        "schema": {"$ref": "#/definitions/routes.errorResponse"}
                    }
                }
            }
        },
        "/api/v1/intervals": {
            "get": {
                "produces": ["application/json"],
                "tags": ["selectors"],
                "summary": "List selectable months and days",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/controller.IntervalOptions"}
                    }
                }
            }
        },
        "/api/v1/view": {
            "get": {
                "produces": ["application/json"],
                "tags": ["statistics"],
                "summary": "Load statistics for a selection",
                "parameters": [
                    {
                        "type": "array",
                        "items": {"type": "string"},
                        "collectionFormat": "multi",
                        "description": "Database paths, concatenated in order",
                        "name": "database",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Month, YYYYMM",
                        "name": "month",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Day, DD; empty selects the whole month",
                        "name": "day",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Metric identifier",
                        "name": "metric",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/routes.viewResponse"}
                    },
                    "304": {
                        "description": "Not Modified"
                    }
                }
            }
        }
    },
    "definitions": {
        "controller.Dropdown": {
            "type": "object",
            "properties": {
                "options": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/controller.Option"}
                },
                "selected": {
                    "type": "array",
                    "items": {"type": "integer"}
                }
            }
        },
        "controller.IntervalOptions": {
            "type": "object",
            "properties": {
                "days": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/controller.Option"}
                },
                "months": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/controller.Option"}
                }
            }
        },
        "controller.Option": {
            "type": "object",
            "properties": {
                "label": {"type": "string"},
                "value": {"type": "string"}
            }
        },
        "controller.Selection": {
            "type": "object",
            "properties": {
                "database": {"type": "string"},
                "interval": {"type": "string"},
                "metric": {"type": "string"}
            }
        },
        "routes.columnResponse": {
            "type": "object",
            "properties": {
                "align": {"type": "string"},
                "width": {"type": "integer"}
            }
        },
        "routes.errorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "error": {"type": "string"},
                "traceId": {"type": "string"}
            }
        },
        "routes.viewResponse": {
            "type": "object",
            "properties": {
                "alerts": {
                    "type": "array",
                    "items": {"type": "string"}
                },
                "columns": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/routes.columnResponse"}
                },
                "dropdowns": {
                    "type": "object",
                    "additionalProperties": {"$ref": "#/definitions/controller.Dropdown"}
                },
                "error": {"type": "string"},
                "rows": {
                    "type": "array",
                    "items": {
                        "type": "array",
                        "items": {"type": "string"}
                    }
                },
                "selection": {"$ref": "#/definitions/controller.Selection"},
                "title": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "stats-viewer API",
	Description:      "Browse precomputed statistics documents by database, interval and metric.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
