package remote

import (
	"encoding/json"
	"fmt"

	"github.com/muhammaduzair11/SehatAI/internal/registry"
)

// SystemInstruction is the base behavioral contract sent in the setup
// message. Outbound calls append a context block naming the appointment.
const SystemInstruction = `**ROLE**
You are 'Sehat AI', a professional front desk assistant for a clinic in Pakistan.
Language: Urdu (Roman script). Tone: Polite, Patient, Helpful.

**STRICT TOOL EXECUTION PROTOCOL**
You are a software interface first, and a chatbot second.
1. **LISTEN**: Hear the user's confirmation.
2. **EXECUTE**: Call the tool (book_appointment or confirm_reminder) *immediately*.
3. **WAIT**: Do NOT speak until the tool returns "success".
4. **SPEAK**: "Appointment saved. Allah Hafiz."
5. **CLOSE**: Call end_call immediately.

**SCENARIO 1: INBOUND BOOKING**
- Greet: "Assalam-o-Alaikum, Sehat Clinic. Ji farmayein?"
- Gather: Name, Phone, Is New Patient?, Preferred Time.
- **CRITICAL**: Confirm details before saving.
- "Maazrat, kya main naam likh loon: [Name]?" (Check details).
- If confirmed -> Call book_appointment.
- After success -> "Book ho gaya. Allah Hafiz." -> Call end_call.

**SCENARIO 2: OUTBOUND REMINDER**
- Context provided: Patient Name, Time, Appointment ID.
- Say: "Assalam-o-Alaikum, [Name] ki appointment hai kal [Time]. Kya aap aa rahay hain?"
- If "Yes" -> Call confirm_reminder(appointmentId="...", confirmed=true).
- If "No" -> Call confirm_reminder(appointmentId="...", confirmed=false).
- After success -> "Update kar diya. Allah Hafiz." -> Call end_call.

**FAILSAFE RULES**
- If you don't know the Appointment ID, look at the context provided at the start of the chat.
- Always include the **Patient Name** in the tool call if possible, as a backup.
- Do not make up fake IDs.`

// OutboundInstruction appends the appointment context for a reminder call.
func OutboundInstruction(appt registry.Appointment) string {
	return fmt.Sprintf("%s\n\n[CONTEXT: Calling %s. ID: %s. Time: %s]",
		SystemInstruction, appt.PatientName, appt.ID, appt.DateTime)
}

// schemaProperty is a single parameter in a function declaration schema.
type schemaProperty struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

type parameterSchema struct {
	Type       string                    `json:"type"`
	Properties map[string]schemaProperty `json:"properties"`
	Required   []string                  `json:"required,omitempty"`
}

// FunctionDeclaration describes one callable tool to the peer.
type FunctionDeclaration struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  parameterSchema `json:"parameters"`
}

// ToolDeclarations returns the three tools every session exposes.
func ToolDeclarations() []FunctionDeclaration {
	return []FunctionDeclaration{
		{
			Name:        "book_appointment",
			Description: "Book a new appointment.",
			Parameters: parameterSchema{
				Type: "object",
				Properties: map[string]schemaProperty{
					"patientName":  {Type: "string"},
					"phoneNumber":  {Type: "string"},
					"isNewPatient": {Type: "boolean"},
					"dateTime":     {Type: "string"},
				},
				Required: []string{"patientName", "phoneNumber", "isNewPatient", "dateTime"},
			},
		},
		{
			Name:        "confirm_reminder",
			Description: "Update appointment status.",
			Parameters: parameterSchema{
				Type: "object",
				Properties: map[string]schemaProperty{
					"appointmentId": {Type: "string"},
					"patientName":   {Type: "string", Description: "Backup name if ID fails"},
					"confirmed":     {Type: "boolean"},
				},
				Required: []string{"appointmentId", "confirmed"},
			},
		},
		{
			Name:        "end_call",
			Description: "End the call immediately after saying goodbye.",
			Parameters: parameterSchema{
				Type:       "object",
				Properties: map[string]schemaProperty{},
			},
		},
	}
}

// Client -> server frames.

type setupMessage struct {
	Setup setupBody `json:"setup"`
}

type setupBody struct {
	Model             string       `json:"model"`
	SystemInstruction string       `json:"systemInstruction"`
	Voice             string       `json:"voice"`
	Tools             []toolsEntry `json:"tools"`
}

type toolsEntry struct {
	FunctionDeclarations []FunctionDeclaration `json:"functionDeclarations"`
}

type realtimeInputMessage struct {
	RealtimeInput realtimeInput `json:"realtimeInput"`
}

type realtimeInput struct {
	Media mediaBlob `json:"media"`
}

type mediaBlob struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type toolResponseMessage struct {
	ToolResponse toolResponseBody `json:"toolResponse"`
}

type toolResponseBody struct {
	FunctionResponses []FunctionResponse `json:"functionResponses"`
}

// FunctionResponse answers one tool-call request.
type FunctionResponse struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

// Server -> client frames.

type serverMessage struct {
	SetupComplete *struct{}      `json:"setupComplete,omitempty"`
	ToolCall      *toolCallBody  `json:"toolCall,omitempty"`
	ServerContent *serverContent `json:"serverContent,omitempty"`
}

type toolCallBody struct {
	FunctionCalls []functionCall `json:"functionCalls"`
}

type functionCall struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

type serverContent struct {
	ModelTurn   *modelTurn `json:"modelTurn,omitempty"`
	Interrupted bool       `json:"interrupted,omitempty"`
}

type modelTurn struct {
	Parts []contentPart `json:"parts"`
}

type contentPart struct {
	InlineData *mediaBlob `json:"inlineData,omitempty"`
}
