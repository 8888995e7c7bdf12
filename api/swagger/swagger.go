package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {"title": "SMA Academic API", "description": "Timetables, per-period attendance and academic records for a secondary school", "version": "1.0.0"},
    "basePath": "/api",
    "schemes": ["http"],
    "securityDefinitions": {"BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}},
    "tags": [{"name": "Timetables", "description": "Weekly grids and slot assignment"}, {"name": "Attendance", "description": "Per-period attendance and late permissions"}],
    "paths": {
        "/auth/login": {
            "post": {"tags": ["Authentication"], "summary": "Authenticate user", "security": [], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}]}
        },
        "/auth/refresh": {
            "post": {"tags": ["Authentication"], "summary": "Rotate refresh token", "security": [], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}]}
        },
        "/auth/logout": {
            "post": {"tags": ["Authentication"], "summary": "Revoke refresh token", "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}]}
        },
        "/timetables": {
            "get": {"tags": ["Timetables"], "summary": "List timetables", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "class_id", "in": "query", "type": "string"}, {"name": "academic_year", "in": "query", "type": "string"}, {"name": "term", "in": "query", "type": "integer"}, {"name": "active", "in": "query", "type": "boolean"}, {"name": "page", "in": "query", "type": "integer"}, {"name": "page_size", "in": "query", "type": "integer"}]},
            "post": {"tags": ["Timetables"], "summary": "Create timetable with 55 empty slots", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTimetableRequest"}}]}
        },
        "/timetables/{id}": {
            "get": {"tags": ["Timetables"], "summary": "Get timetable grid", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}]},
            "delete": {"tags": ["Timetables"], "summary": "Delete inactive timetable", "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}]}
        },
        "/timetables/assign-slot": {
            "post": {"tags": ["Timetables"], "summary": "Assign a class course to a slot", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignSlotRequest"}}]}
        },
        "/timetables/slots/{rosterId}/clear": {
            "post": {"tags": ["Timetables"], "summary": "Clear a slot", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "rosterId", "in": "path", "required": true, "type": "string"}]}
        },
        "/timetables/{id}/activate": {
            "post": {"tags": ["Timetables"], "summary": "Activate timetable", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}]}
        },
        "/timetables/{id}/deactivate": {
            "post": {"tags": ["Timetables"], "summary": "Deactivate timetable", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}]}
        },
        "/timetables/class/{classId}": {
            "get": {"tags": ["Timetables"], "summary": "Active timetable of a class", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "classId", "in": "path", "required": true, "type": "string"}]}
        },
        "/timetables/teacher/me": {
            "get": {"tags": ["Timetables"], "summary": "Caller's slots for a day", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "date", "in": "query", "type": "string"}]}
        },
        "/attendance/submit": {
            "post": {"tags": ["Attendance"], "summary": "Submit attendance", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitAttendanceRequest"}}]}
        },
        "/attendance/status/{rosterId}": {
            "get": {"tags": ["Attendance"], "summary": "Period attendance status", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "rosterId", "in": "path", "required": true, "type": "string"}, {"name": "date", "in": "query", "type": "string"}]}
        },
        "/attendance/roster/{rosterId}": {
            "get": {"tags": ["Attendance"], "summary": "Attendance records of a slot", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "rosterId", "in": "path", "required": true, "type": "string"}, {"name": "date", "in": "query", "type": "string"}]}
        },
        "/attendance/permissions": {
            "get": {"tags": ["Attendance"], "summary": "List permission requests", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "status", "in": "query", "type": "string"}, {"name": "teacher_id", "in": "query", "type": "string"}]},
            "post": {"tags": ["Attendance"], "summary": "Request late attendance permission", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreatePermissionRequest"}}]}
        },
        "/attendance/permissions/{id}/approve": {
            "post": {"tags": ["Attendance"], "summary": "Approve permission request", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}]}
        },
        "/classes": {
            "get": {"tags": ["Classes"], "summary": "List classes", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "year_level", "in": "query", "type": "integer"}, {"name": "search", "in": "query", "type": "string"}]},
            "post": {"tags": ["Classes"], "summary": "Create class", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertClassRequest"}}]}
        },
        "/classes/{id}": {
            "get": {"tags": ["Classes"], "summary": "Get class", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}]},
            "put": {"tags": ["Classes"], "summary": "Update class", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertClassRequest"}}]},
            "delete": {"tags": ["Classes"], "summary": "Delete class", "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "412": {"description": "Precondition Failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}]}
        },
        "/classes/{id}/assignments": {
            "get": {"tags": ["Classes"], "summary": "Courses of a class", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}]},
            "post": {"tags": ["Classes"], "summary": "Assign course to class", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAssignmentRequest"}}]}
        },
        "/assignments/{id}": {
            "put": {"tags": ["Classes"], "summary": "Change assignment teacher", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateAssignmentTeacherRequest"}}]},
            "delete": {"tags": ["Classes"], "summary": "Remove assignment", "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}]}
        },
        "/courses": {
            "get": {"tags": ["Courses"], "summary": "List courses", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "year_level", "in": "query", "type": "integer"}, {"name": "search", "in": "query", "type": "string"}]},
            "post": {"tags": ["Courses"], "summary": "Create course", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertCourseRequest"}}]}
        },
        "/courses/{id}": {
            "get": {"tags": ["Courses"], "summary": "Get course", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}]},
            "put": {"tags": ["Courses"], "summary": "Update course", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertCourseRequest"}}]},
            "delete": {"tags": ["Courses"], "summary": "Delete course", "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "412": {"description": "Precondition Failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}]}
        },
        "/students": {
            "get": {"tags": ["Students"], "summary": "List students", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "class_id", "in": "query", "type": "string"}, {"name": "active", "in": "query", "type": "boolean"}, {"name": "search", "in": "query", "type": "string"}]},
            "post": {"tags": ["Students"], "summary": "Create student", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStudentRequest"}}]}
        },
        "/students/{id}": {
            "get": {"tags": ["Students"], "summary": "Get student", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}]},
            "put": {"tags": ["Students"], "summary": "Update student", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStudentRequest"}}]},
            "delete": {"tags": ["Students"], "summary": "Deactivate student", "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}]}
        },
        "/marks": {
            "post": {"tags": ["Marks"], "summary": "Record mark", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordMarkRequest"}}]}
        },
        "/marks/student/{studentId}": {
            "get": {"tags": ["Marks"], "summary": "Marks of a student", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "studentId", "in": "path", "required": true, "type": "string"}, {"name": "academic_year", "in": "query", "type": "integer"}]}
        },
        "/deliberation/rules": {
            "get": {"tags": ["Deliberation"], "summary": "List rules", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "post": {"tags": ["Deliberation"], "summary": "Create rule", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateDeliberationRuleRequest"}}]}
        },
        "/deliberation/rules/{id}": {
            "delete": {"tags": ["Deliberation"], "summary": "Delete rule", "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}]}
        },
        "/deliberation/evaluate": {
            "post": {"tags": ["Deliberation"], "summary": "Evaluate class", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EvaluateRequest"}}]}
        }
    },
    "definitions": {
        "LoginRequest": {"type": "object", "properties": {"email": {"type": "string"}, "password": {"type": "string"}}},
        "RefreshTokenRequest": {"type": "object", "properties": {"refresh_token": {"type": "string"}}},
        "CreateTimetableRequest": {"type": "object", "properties": {"class_id": {"type": "string"}, "academic_year": {"type": "string"}, "term": {"type": "integer"}}},
        "AssignSlotRequest": {"type": "object", "properties": {"roster_id": {"type": "string"}, "assignment_id": {"type": "string"}}},
        "SubmitAttendanceRequest": {"type": "object", "properties": {"roster_id": {"type": "string"}, "attendance": {"type": "object", "additionalProperties": {"type": "boolean"}}}},
        "CreatePermissionRequest": {"type": "object", "properties": {"roster_id": {"type": "string"}, "period_date": {"type": "string"}, "reason": {"type": "string"}}},
        "UpsertClassRequest": {"type": "object", "properties": {"name": {"type": "string"}, "year_level": {"type": "integer"}}},
        "UpsertCourseRequest": {"type": "object", "properties": {"name": {"type": "string"}, "year_level": {"type": "integer"}}},
        "CreateAssignmentRequest": {"type": "object", "properties": {"course_id": {"type": "string"}, "teacher_id": {"type": "string"}, "academic_year": {"type": "integer"}}},
        "UpdateAssignmentTeacherRequest": {"type": "object", "properties": {"teacher_id": {"type": "string"}}},
        "CreateStudentRequest": {"type": "object", "properties": {"class_id": {"type": "string"}, "full_name": {"type": "string"}, "registration_number": {"type": "string"}}},
        "UpdateStudentRequest": {"type": "object", "properties": {"class_id": {"type": "string"}, "full_name": {"type": "string"}}},
        "RecordMarkRequest": {"type": "object", "properties": {"student_id": {"type": "string"}, "course_id": {"type": "string"}, "academic_year": {"type": "integer"}, "term": {"type": "integer"}, "score": {"type": "number"}}},
        "CreateDeliberationRuleRequest": {"type": "object", "properties": {"min_score": {"type": "number"}, "max_score": {"type": "number"}, "decision": {"type": "string"}, "label": {"type": "string"}}},
        "EvaluateRequest": {"type": "object", "properties": {"class_id": {"type": "string"}, "academic_year": {"type": "integer"}}},
        "Pagination": {"type": "object", "properties": {"page": {"type": "integer"}, "page_size": {"type": "integer"}, "total_count": {"type": "integer"}}},
        "APIError": {"type": "object", "properties": {"code": {"type": "string"}, "message": {"type": "string"}}},
        "ResponseEnvelope": {"type": "object", "properties": {"success": {"type": "boolean"}, "data": {"type": "object"}, "message": {"type": "string"}, "error": {"$ref": "#/definitions/APIError"}, "pagination": {"$ref": "#/definitions/Pagination"}, "meta": {"type": "object"}}}
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
