package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Cronograma API",
        "description": "Schedule ingestion and plan compliance rules for the academic program tracker",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Schedule", "description": "Master schedule ingestion"},
        {"name": "Rules", "description": "Per-student plan compliance"},
        {"name": "Reports", "description": "Cohort reports"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database or cache unavailable"}
                }
            }
        },
        "/metrics": {
            "get": {
                "summary": "Prometheus metrics",
                "produces": ["text/plain"],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/v1/schedule/imports": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Import the consolidated schedule workbook",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ImportScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ImportSummaryEnvelope"}},
                    "400": {"description": "Invalid payload or path outside the import directory", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Workbook not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Missing sheet or columns", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/schedule/imports/files": {
            "get": {
                "tags": ["Schedule"],
                "summary": "List workbooks available for import",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/students/{id}/electives": {
            "get": {
                "tags": ["Rules"],
                "summary": "Count completed and planned electives",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown student", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/students/{id}/orientations": {
            "get": {
                "tags": ["Rules"],
                "summary": "Count completed electives per orientation for a year",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "year", "in": "query", "type": "integer", "description": "Plan year, defaults to the current year"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown student", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/students/{id}/orientation-rule": {
            "get": {
                "tags": ["Rules"],
                "summary": "Check the orientation threshold rule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown student", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/students/{id}/plan-coherence": {
            "get": {
                "tags": ["Rules"],
                "summary": "List structural problems of the open plan",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown student", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/students/{id}/risk-report": {
            "get": {
                "tags": ["Rules"],
                "summary": "Summarise completion risk for a student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown student", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/students/{id}/reconciliation": {
            "get": {
                "tags": ["Rules"],
                "summary": "Compare the open plan with enrollments",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown student", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/reports/at-risk": {
            "get": {
                "tags": ["Reports"],
                "summary": "List active students at risk of not completing the program",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "ImportScheduleRequest": {
            "type": "object",
            "properties": {
                "path": {"type": "string", "description": "Workbook path relative to the import directory"}
            },
            "required": ["path"]
        },
        "ImportSummary": {
            "type": "object",
            "properties": {
                "cursos_creados": {"type": "integer"},
                "cursos_actualizados": {"type": "integer"},
                "sources_creados": {"type": "integer"},
                "sources_actualizados": {"type": "integer"},
                "errores_count": {"type": "integer"},
                "total_filas": {"type": "integer"},
                "errores": {"type": "array", "items": {"type": "string"}}
            }
        },
        "ImportSummaryEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/ImportSummary"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
