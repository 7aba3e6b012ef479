package models

// Role identifies what kind of account a user holds.
type Role string

const (
	RoleCandidate Role = "candidate"
	RoleWelder    Role = "welder"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCandidate, RoleWelder, RoleAdmin:
		return true
	}
	return false
}

// Status is the lifecycle position of a profile. Transition rules live in
// internal/lifecycle; everything else treats this as an opaque label.
type Status string

const (
	StatusIncomplete       Status = "incomplete"
	StatusQuizPending      Status = "quiz_pending"
	StatusDocumentsPending Status = "documents_pending"
	StatusUnderReview      Status = "under_review"
	StatusApproved         Status = "approved"
	StatusRejected         Status = "rejected"
	StatusEmployee         Status = "employee"
)

// DocsStatus is the independent sub-status of the documents portion of a
// profile, driven by the admin document-management flow.
type DocsStatus string

const (
	DocsPending  DocsStatus = "pending"
	DocsApproved DocsStatus = "approved"
	DocsRejected DocsStatus = "rejected"
)

// ProfileKind selects which question bank and document checklist applies.
type ProfileKind string

const (
	KindDriver ProfileKind = "driver"
	KindWelder ProfileKind = "welder"
)

// KindForRole maps an account role to its profile kind.
func KindForRole(r Role) ProfileKind {
	if r == RoleWelder {
		return KindWelder
	}
	return KindDriver
}

type User struct {
	ID           string `json:"id" db:"id"`
	Email        string `json:"email" db:"email" validate:"required,email"`
	Phone        string `json:"phone,omitempty" db:"phone"`
	PasswordHash string `json:"-" db:"password_hash"`
	Role         Role   `json:"role" db:"role"`
	Created      int64  `json:"created" db:"created"`
}

// Personal is the contact block of a profile.
type Personal struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	ContactNumber string `json:"contact_number"`
}

// Passport holds the identity-document fields. Number is the field that gates
// the incomplete -> quiz_pending transition.
type Passport struct {
	Type         string `json:"type"`
	CountryCode  string `json:"country_code"`
	Number       string `json:"number"`
	FullName     string `json:"full_name"`
	Photograph   string `json:"photograph,omitempty"`
	Nationality  string `json:"nationality"`
	DateOfBirth  string `json:"date_of_birth"`
	PlaceOfBirth string `json:"place_of_birth"`
	Sex          string `json:"sex"`
	DateOfIssue  string `json:"date_of_issue"`
	DateOfExpiry string `json:"date_of_expiry"`
	PlaceOfIssue string `json:"place_of_issue"`
	FatherName   string `json:"father_name"`
	SpouseName   string `json:"spouse_name,omitempty"`
	Address      string `json:"address"`
	Signature    string `json:"signature,omitempty"`
}

// Experience holds blob ids of the uploaded experience videos.
type Experience struct {
	IntroVideo        string `json:"intro_video,omitempty"`
	DrivingProofVideo string `json:"driving_proof_video,omitempty"`
}

// Agreements are the three consents that gate document submission.
type Agreements struct {
	WorkContract  bool `json:"work_contract"`
	Accommodation bool `json:"accommodation"`
	Invitation    bool `json:"invitation"`
}

// All reports whether every agreement has been accepted.
func (a Agreements) All() bool {
	return a.WorkContract && a.Accommodation && a.Invitation
}

// Documents holds blob ids of uploaded documents. Empty string means not
// uploaded. ExperienceCertificate, PCC, ITR and HealthCertificates are
// required for review; the rest are optional.
type Documents struct {
	ExperienceCertificate string `json:"experience_certificate,omitempty"`
	PCC                   string `json:"pcc,omitempty"`
	ITR                   string `json:"itr,omitempty"`
	TravelTickets         string `json:"travel_tickets,omitempty"`
	HealthCertificates    string `json:"health_certificates,omitempty"`
	VSFProof              string `json:"vsf_proof,omitempty"`
}

// Missing returns the names of required documents not yet uploaded.
func (d Documents) Missing() []string {
	var out []string
	if d.ExperienceCertificate == "" {
		out = append(out, "experience_certificate")
	}
	if d.PCC == "" {
		out = append(out, "pcc")
	}
	if d.ITR == "" {
		out = append(out, "itr")
	}
	if d.HealthCertificates == "" {
		out = append(out, "health_certificates")
	}
	return out
}

// Profile is the per-user onboarding record. One profile per user, keyed by
// UserID.
type Profile struct {
	UserID              string      `json:"user_id" db:"user_id"`
	Kind                ProfileKind `json:"kind" db:"kind"`
	Personal            Personal    `json:"personal"`
	Passport            Passport    `json:"passport"`
	Experience          Experience  `json:"experience"`
	QuizScore           *int        `json:"quiz_score,omitempty" db:"quiz_score"`
	Agreements          Agreements  `json:"agreements"`
	Documents           Documents   `json:"documents"`
	Status              Status      `json:"status" db:"status"`
	DocsStatus          DocsStatus  `json:"docs_status" db:"docs_status"`
	DocsRejectionReason string      `json:"docs_rejection_reason,omitempty" db:"docs_rejection_reason"`
	CompletedAt         *int64      `json:"completed_at,omitempty" db:"completed_at"`
	Updated             int64       `json:"updated" db:"updated"`
}

// QuizPassed reports whether the stored score meets the passing threshold.
func (p *Profile) QuizPassed(threshold int) bool {
	return p.QuizScore != nil && *p.QuizScore >= threshold
}

type JobStatus string

const (
	JobActive   JobStatus = "active"
	JobInactive JobStatus = "inactive"
)

// Job is an admin-authored job posting shown to candidates.
type Job struct {
	ID           string    `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Description  string    `json:"description" db:"description"`
	Requirements string    `json:"requirements" db:"requirements"`
	Location     string    `json:"location" db:"location"`
	Salary       string    `json:"salary" db:"salary"`
	CreatedBy    string    `json:"created_by" db:"created_by"`
	Created      int64     `json:"created" db:"created"`
	Status       JobStatus `json:"status" db:"status"`
}

// QuizQuestion is an admin-authored multiple-choice question. CorrectAnswer
// indexes into Options and is never exposed to candidates.
type QuizQuestion struct {
	ID            string      `json:"id" db:"id"`
	Question      string      `json:"question" db:"question"`
	Image         string      `json:"image,omitempty" db:"image"`
	Options       []string    `json:"options"`
	CorrectAnswer int         `json:"correct_answer" db:"correct_answer"`
	Kind          ProfileKind `json:"kind" db:"kind"`
	CreatedBy     string      `json:"created_by" db:"created_by"`
	Created       int64       `json:"created" db:"created"`
}

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// Application links a candidate to a job posting.
type Application struct {
	ID          string            `json:"id" db:"id"`
	JobID       string            `json:"job_id" db:"job_id"`
	CandidateID string            `json:"candidate_id" db:"candidate_id"`
	Applied     int64             `json:"applied" db:"applied"`
	Status      ApplicationStatus `json:"status" db:"status"`
}
