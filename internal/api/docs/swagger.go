package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// Response is the envelope returned by every mutating endpoint
type Response struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message" example:"Employee Alice registered successfully"`
}

// RegisterEmployeeRequest is the JSON body for employee registration
type RegisterEmployeeRequest struct {
	Name  string `json:"name" example:"Alice"`
	Image string `json:"image" example:"data:image/jpeg;base64,/9j/4AAQSkZJRg..."`
}

type UpdateEmployeeRequest struct {
	Name string `json:"name" example:"Alice Smith"`
}

type RegisterEmployeeResponse struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message" example:"Employee Alice registered successfully"`
	Data    struct {
		EmployeeID int64 `json:"employee_id" example:"1"`
	} `json:"data"`
}

type EmployeeRecord struct {
	ID        int64  `json:"id" example:"1"`
	Name      string `json:"name" example:"Alice"`
	ImagePath string `json:"image_path" example:"uploads/employee_20261017T090000_0b6f.jpg"`
	CreatedAt string `json:"created_at" example:"2026-10-17T09:00:00Z"`
	UpdatedAt string `json:"updated_at" example:"2026-10-17T09:00:00Z"`
}

// Event is one message on the /events stream
type Event struct {
	Type string `json:"type" example:"visitor.arrived"`
	Data struct {
		VisitorID    int64   `json:"visitor_id,omitempty" example:"7"`
		EmployeeID   int64   `json:"employee_id,omitempty" example:"0"`
		Name         string  `json:"name,omitempty" example:"Eve"`
		PersonToMeet string  `json:"person_to_meet,omitempty" example:"Alice"`
		Status       string  `json:"status,omitempty" example:"Pending"`
		Distance     float64 `json:"distance,omitempty" example:"0.28"`
	} `json:"data"`
	Timestamp string `json:"timestamp" example:"2026-10-17T09:00:00Z"`
}

type MarkAttendanceRequest struct {
	Image string `json:"image" example:"/9j/4AAQSkZJRg..."`
}

// MarkAttendanceResponse covers the three outcomes; employee fields are set
// for an employee and visitor fields otherwise
type MarkAttendanceResponse struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message" example:"Attendance marked for Alice"`
	Data    struct {
		EmployeeID int64   `json:"employee_id,omitempty" example:"1"`
		VisitorID  int64   `json:"visitor_id,omitempty" example:"0"`
		Name       string  `json:"name,omitempty" example:"Alice"`
		Date       string  `json:"date,omitempty" example:"2026-10-17"`
		Time       string  `json:"time,omitempty" example:"09:00:00"`
		Status     string  `json:"status,omitempty" example:"visitor"`
		Distance   float64 `json:"distance,omitempty" example:"0.31"`
	} `json:"data"`
}

type AttendanceRecord struct {
	ID         int64  `json:"id" example:"1"`
	EmployeeID int64  `json:"employee_id" example:"1"`
	Name       string `json:"name" example:"Alice"`
	Date       string `json:"date" example:"2026-10-17"`
	Time       string `json:"time" example:"09:00:00"`
	Timestamp  string `json:"timestamp" example:"2026-10-17T09:00:00Z"`
}

type CreateVisitorRequest struct {
	Name         string `json:"name" example:"Eve"`
	PersonToMeet string `json:"person_to_meet" example:"Alice"`
	Image        string `json:"image" example:"/9j/4AAQSkZJRg..."`
}

type CreateVisitorResponse struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message" example:"Visitor Eve created successfully"`
	Data    struct {
		VisitorID int64 `json:"visitor_id" example:"3"`
	} `json:"data"`
}

type UpdateVisitorRequest struct {
	Name         string `json:"name,omitempty" example:"Eve"`
	PersonToMeet string `json:"person_to_meet,omitempty" example:"Bob"`
	Status       string `json:"status,omitempty" example:"Approved"`
}

type DecisionRequest struct {
	Decision string `json:"decision" example:"approve"`
}

type VisitorRecord struct {
	ID           int64  `json:"id" example:"3"`
	Name         string `json:"name" example:"Eve"`
	PersonToMeet string `json:"person_to_meet" example:"Alice"`
	Status       string `json:"status" example:"Pending"`
	ImagePath    string `json:"image_path" example:"uploads/visitor_20261017T090000_9a1c.jpg"`
	Timestamp    string `json:"timestamp" example:"2026-10-17T09:00:00Z"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

var (
	security = []map[string][]string{{"ApiKeyAuth": {}}}

	errUnauthorized = response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized")
	errInternal     = response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error")
	errBadID        = response.New(ErrorResponse{Code: "BAD_REQUEST", Message: "id must be a positive integer"}, "400", "Bad Request")
)

// faceErrors are returned by every endpoint that reads a face image
func faceErrors(extra ...response.Response) []response.Response {
	errs := []response.Response{
		response.New(ErrorResponse{Code: "INVALID_IMAGE", Message: "Invalid image data"}, "400", "Bad Request"),
		response.New(ErrorResponse{Code: "NO_FACE_DETECTED", Message: "No face detected in the image"}, "400", "Bad Request"),
		errUnauthorized,
		response.New(ErrorResponse{Code: "IMAGE_TOO_LARGE", Message: "Image exceeds the maximum allowed size"}, "413", "Payload Too Large"),
		response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "422", "Unprocessable Entity"),
		response.New(ErrorResponse{Code: "RATE_LIMITED", Message: "Too many requests, try again later"}, "429", "Too Many Requests"),
		errInternal,
		response.New(ErrorResponse{Code: "EXTRACTOR_UNAVAILABLE", Message: "Face embedding service unavailable"}, "503", "Service Unavailable"),
	}
	return append(errs, extra...)
}

func idParam(description string) *parameter.Parameter {
	return parameter.IntParam("id", parameter.Path, parameter.WithDescription(description))
}

// NewSwagger creates and configures the Swagger documentation
func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Frontdesk API",
		Version:     "v1.0.0",
		Description: "Face recognition attendance and visitor management for a front desk camera",
		Host:        "localhost:3000",
		Path:        "/v1",
	})

	consumes := []mime.MIME{mime.JSON, mime.MIME("multipart/form-data")}

	endpoints := []*endpoint.EndPoint{
		// Employees

		endpoint.New(
			endpoint.POST,
			"/employees",
			endpoint.WithTags("Employees"),
			endpoint.WithSummary("Register an employee"),
			endpoint.WithDescription("Extracts the face embedding from the image and enrolls the employee. The image is a base64 string (optionally a data URL) or a multipart file named image."),
			endpoint.WithConsume(consumes),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(RegisterEmployeeRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(RegisterEmployeeResponse{}, "201", "Employee registered"),
			}),
			endpoint.WithErrors(faceErrors()),
			endpoint.WithSecurity(security),
		),
		endpoint.New(
			endpoint.GET,
			"/employees",
			endpoint.WithTags("Employees"),
			endpoint.WithSummary("List employees"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New([]EmployeeRecord{}, "200", "Employees ordered by id"),
			}),
			endpoint.WithErrors([]response.Response{errUnauthorized, errInternal}),
			endpoint.WithSecurity(security),
		),
		endpoint.New(
			endpoint.GET,
			"/employees/{id}",
			endpoint.WithTags("Employees"),
			endpoint.WithSummary("Get an employee"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(idParam("Employee id")),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmployeeRecord{}, "200", "Employee"),
			}),
			endpoint.WithErrors([]response.Response{
				errBadID,
				errUnauthorized,
				response.New(ErrorResponse{Code: "EMPLOYEE_NOT_FOUND", Message: "Employee not found"}, "404", "Not Found"),
				errInternal,
			}),
			endpoint.WithSecurity(security),
		),
		endpoint.New(
			endpoint.PUT,
			"/employees/{id}",
			endpoint.WithTags("Employees"),
			endpoint.WithSummary("Rename an employee"),
			endpoint.WithDescription("Only the name can change; the face embedding is fixed at registration."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(idParam("Employee id")),
			endpoint.WithBody(UpdateEmployeeRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(Response{}, "200", "Employee updated"),
			}),
			endpoint.WithErrors([]response.Response{
				errBadID,
				errUnauthorized,
				response.New(ErrorResponse{Code: "EMPLOYEE_NOT_FOUND", Message: "Employee not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "422", "Unprocessable Entity"),
				errInternal,
			}),
			endpoint.WithSecurity(security),
		),
		endpoint.New(
			endpoint.DELETE,
			"/employees/{id}",
			endpoint.WithTags("Employees"),
			endpoint.WithSummary("Delete an employee"),
			endpoint.WithDescription("Removes the employee and the stored image. Attendance rows keep the name and lose the employee reference."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(idParam("Employee id")),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(Response{}, "200", "Employee deleted"),
			}),
			endpoint.WithErrors([]response.Response{
				errBadID,
				errUnauthorized,
				response.New(ErrorResponse{Code: "EMPLOYEE_NOT_FOUND", Message: "Employee not found"}, "404", "Not Found"),
				errInternal,
			}),
			endpoint.WithSecurity(security),
		),

		// Attendance

		endpoint.New(
			endpoint.POST,
			"/attendance",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("Identify a face at the front desk"),
			endpoint.WithDescription("Matches the face against employees first and then against known visitors. An employee match records attendance, a visitor match reports the visitor, and an unknown face is stored as a pending visitor."),
			endpoint.WithConsume([]mime.MIME{mime.JSON, mime.MIME("multipart/form-data"), mime.MIME("application/x-www-form-urlencoded")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(MarkAttendanceRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(MarkAttendanceResponse{}, "200", "Face identified"),
			}),
			endpoint.WithErrors(faceErrors(
				response.New(ErrorResponse{Code: "DIMENSIONALITY_MISMATCH", Message: "Stored face embedding does not match the query embedding length"}, "500", "Internal Server Error"),
			)),
			endpoint.WithSecurity(security),
		),
		endpoint.New(
			endpoint.GET,
			"/attendance",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("List attendance records"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("date", parameter.Query, parameter.WithDescription("Only records for this day (YYYY-MM-DD)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New([]AttendanceRecord{}, "200", "Attendance records ordered by id"),
			}),
			endpoint.WithErrors([]response.Response{
				errUnauthorized,
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "date must be YYYY-MM-DD"}, "422", "Unprocessable Entity"),
				errInternal,
			}),
			endpoint.WithSecurity(security),
		),

		// Visitors

		endpoint.New(
			endpoint.POST,
			"/visitors",
			endpoint.WithTags("Visitors"),
			endpoint.WithSummary("Create a visitor"),
			endpoint.WithDescription("Enrolls a visitor with a face embedding so later visits are recognised."),
			endpoint.WithConsume(consumes),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(CreateVisitorRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(CreateVisitorResponse{}, "201", "Visitor created"),
			}),
			endpoint.WithErrors(faceErrors()),
			endpoint.WithSecurity(security),
		),
		endpoint.New(
			endpoint.GET,
			"/visitors",
			endpoint.WithTags("Visitors"),
			endpoint.WithSummary("List visitors"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New([]VisitorRecord{}, "200", "Visitors ordered by id"),
			}),
			endpoint.WithErrors([]response.Response{errUnauthorized, errInternal}),
			endpoint.WithSecurity(security),
		),
		endpoint.New(
			endpoint.GET,
			"/visitors/{id}",
			endpoint.WithTags("Visitors"),
			endpoint.WithSummary("Get a visitor"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(idParam("Visitor id")),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(VisitorRecord{}, "200", "Visitor"),
			}),
			endpoint.WithErrors([]response.Response{
				errBadID,
				errUnauthorized,
				response.New(ErrorResponse{Code: "VISITOR_NOT_FOUND", Message: "Visitor not found"}, "404", "Not Found"),
				errInternal,
			}),
			endpoint.WithSecurity(security),
		),
		endpoint.New(
			endpoint.PUT,
			"/visitors/{id}",
			endpoint.WithTags("Visitors"),
			endpoint.WithSummary("Update a visitor"),
			endpoint.WithDescription("Partial update; omitted fields keep their value. Status accepts Pending, Approved or Rejected in any case."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(idParam("Visitor id")),
			endpoint.WithBody(UpdateVisitorRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(Response{}, "200", "Visitor updated"),
			}),
			endpoint.WithErrors([]response.Response{
				errBadID,
				response.New(ErrorResponse{Code: "INVALID_STATUS", Message: "Invalid visitor status"}, "400", "Bad Request"),
				errUnauthorized,
				response.New(ErrorResponse{Code: "VISITOR_NOT_FOUND", Message: "Visitor not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "422", "Unprocessable Entity"),
				errInternal,
			}),
			endpoint.WithSecurity(security),
		),
		endpoint.New(
			endpoint.PUT,
			"/visitors/{id}/decision",
			endpoint.WithTags("Visitors"),
			endpoint.WithSummary("Approve or reject a visitor"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(idParam("Visitor id")),
			endpoint.WithBody(DecisionRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(Response{}, "200", "Decision recorded"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INVALID_DECISION", Message: "Invalid decision, expected approve or reject"}, "400", "Bad Request"),
				errUnauthorized,
				response.New(ErrorResponse{Code: "VISITOR_NOT_FOUND", Message: "Visitor not found"}, "404", "Not Found"),
				errInternal,
			}),
			endpoint.WithSecurity(security),
		),
		endpoint.New(
			endpoint.DELETE,
			"/visitors/{id}",
			endpoint.WithTags("Visitors"),
			endpoint.WithSummary("Delete a visitor"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(idParam("Visitor id")),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(Response{}, "200", "Visitor deleted"),
			}),
			endpoint.WithErrors([]response.Response{
				errBadID,
				errUnauthorized,
				response.New(ErrorResponse{Code: "VISITOR_NOT_FOUND", Message: "Visitor not found"}, "404", "Not Found"),
				errInternal,
			}),
			endpoint.WithSecurity(security),
		),

		// Live events

		endpoint.New(
			endpoint.GET,
			"/events",
			endpoint.WithTags("Events"),
			endpoint.WithSummary("Stream front desk events"),
			endpoint.WithDescription("WebSocket upgrade. Each message is a JSON Event: attendance.marked, visitor.recognized, visitor.arrived, visitor.created, visitor.decided or employee.registered. The same events are POSTed to WEBHOOK_URL when configured, signed with X-Frontdesk-Signature."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(Event{}, "101", "Switching Protocols"),
			}),
			endpoint.WithErrors([]response.Response{
				errUnauthorized,
				response.New(ErrorResponse{Code: "HTTP_ERROR", Message: "Upgrade Required"}, "426", "Upgrade Required"),
			}),
			endpoint.WithSecurity(security),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
