package domain

// NoContextAnswer is returned verbatim when retrieval produces no
// material to ground an answer on.
const NoContextAnswer = "I don't know based on the given context."

// AskRequest is one student question addressed to a course.
type AskRequest struct {
	Username  string
	Question  string
	SessionID string
	Year      string
	Semester  string
	Subject   string
}

// Key returns the memory scope for the request.
func (r AskRequest) Key() SessionKey {
	return SessionKey{
		Username:  r.Username,
		SessionID: r.SessionID,
		Year:      r.Year,
		Semester:  r.Semester,
		Subject:   r.Subject,
	}
}

// IndexKey returns the semantic index the request targets.
func (r AskRequest) IndexKey() IndexKey {
	return IndexKey{Subject: r.Subject, Year: r.Year, Semester: r.Semester}
}

// Validate checks that the question and all scope components are present.
func (r AskRequest) Validate() error {
	if err := r.Key().Validate(); err != nil {
		return err
	}
	if r.Question == "" {
		return ErrInvalidInput
	}
	return nil
}

// PromptBudget caps how much of the prompt may be spent on retrieved
// context and how long the generated answer may run.
type PromptBudget struct {
	ContextTokens int
	OutputTokens  int
}

// ImageRecord is a figure or diagram extracted from a source document
// page, attached to answers whose context came from that page.
type ImageRecord struct {
	URL      string `json:"image_url"`
	Page     int    `json:"page"`
	Filename string `json:"filename"`
	Document string `json:"document"`
}

// ChatResponse is the final answer to an AskRequest.
type ChatResponse struct {
	Answer string        `json:"answer"`
	Images []ImageRecord `json:"images"`
}
