package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Yoklama API",
        "description": "Weekly schedule resolution for students and academics",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Schedule", "description": "Resolved weekly schedules"},
        {"name": "Profiles", "description": "Student and academic profiles"}
    ],
    "paths": {
        "/health": {
            "get": {"summary": "Health check", "responses": {"200": {"description": "OK"}}}
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {"200": {"description": "Ready"}, "503": {"description": "A dependency is down"}}
            }
        },
        "/metrics": {
            "get": {"summary": "Prometheus metrics", "produces": ["text/plain"], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/schedule/me": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Weekly schedule of the caller",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ScheduleEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "No student or academic profile", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/schedule/me/export": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Download the caller's schedule",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "required": true, "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Attachment", "schema": {"type": "file"}},
                    "400": {"description": "Invalid format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Exports disabled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/students/{id}/schedule": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Weekly schedule of a student (admin or self)",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ScheduleEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/academics/{id}/schedule": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Weekly schedule of an academic (admin or self)",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ScheduleEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/me/role": {
            "get": {
                "tags": ["Profiles"],
                "summary": "Detect the caller's profile role",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "No profile", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/profiles/students/{id}": {
            "put": {
                "tags": ["Profiles"],
                "summary": "Register or update a student profile (admin or self)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveStudentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/profiles/academics/{id}": {
            "put": {
                "tags": ["Profiles"],
                "summary": "Register or update an academic profile (admin or self)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveAcademicRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SaveStudentRequest": {
            "type": "object",
            "required": ["name", "departmentId", "classNo"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "studentNo": {"type": "string"},
                "departmentId": {"type": "string"},
                "classNo": {"type": "string"}
            }
        },
        "SaveAcademicRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "title": {"type": "string"},
                "departmentId": {"type": "string"}
            }
        },
        "Lesson": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "source": {"type": "string"},
                "courseCode": {"type": "string"},
                "title": {"type": "string"},
                "section": {"type": "string"},
                "day": {"type": "integer", "minimum": 0, "maximum": 7},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "room": {"type": "string"},
                "instructor": {"type": "string"},
                "instructorId": {"type": "string"}
            }
        },
        "ScheduleBanner": {
            "type": "object",
            "properties": {
                "departmentName": {"type": "string"},
                "departmentCode": {"type": "string"},
                "classNo": {"type": "string"},
                "instructorName": {"type": "string"},
                "term": {"type": "string"},
                "year": {"type": "integer"},
                "summary": {"type": "string"}
            }
        },
        "GroupedSchedule": {
            "type": "object",
            "properties": {
                "role": {"type": "string", "enum": ["STUDENT", "ACADEMIC"]},
                "displayName": {"type": "string"},
                "grouped": {
                    "type": "object",
                    "description": "Day buckets 1-7 (Monday-Sunday) and 0 for unknown days",
                    "additionalProperties": {"type": "array", "items": {"$ref": "#/definitions/Lesson"}}
                },
                "total": {"type": "integer"},
                "info": {"type": "string"},
                "infoCode": {
                    "type": "string",
                    "enum": ["MISSING_ATTRIBUTES", "DEPARTMENT_NOT_FOUND", "TERM_NOT_CONFIGURED", "TERM_GROUP_NOT_FOUND", "NO_LESSONS", "LOAD_FAILED"]
                },
                "banner": {"$ref": "#/definitions/ScheduleBanner"}
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
        },
        "ScheduleEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/GroupedSchedule"},
                "meta": {
                    "type": "object",
                    "properties": {
                        "cache_hit": {"type": "boolean"},
                        "processing_time_ms": {"type": "integer"}
                    }
                }
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
