package weblearn

import "time"

// Semester ids the portal hands out end in one of these suffixes.
const (
	SemesterFall   = 1
	SemesterSpring = 2
	SemesterSummer = 3
)

// All records are immutable once a fetch returns them. Ids are opaque
// strings scoped to their own resource type, never unique across
// types.

type Course struct {
	Id          string
	Name        string
	EnglishName string
	TeacherName string
	// normally the string form of an integer, but the server has been
	// seen sending values that are not, so the raw text is kept
	TeacherNumber string
	CourseNumber  string
	CourseIndex   int
	// filled in by the per-course secondary fetch; every course has at
	// least one entry, some have more
	TimeLocation []string
}

type Notification struct {
	CourseId string
	Id       string
	Title    string
	// html, base64 encoded on the wire
	Content     string
	Read        bool
	Important   bool
	PublishTime time.Time
	Publisher   string
	// "" when the notification has no attachment
	AttachmentName string
	// filled in by the detail-page secondary fetch, only for
	// notifications that declare an attachment name
	AttachmentUrl string
}

type File struct {
	Id          string
	Title       string
	Description string
	// size in bytes
	RawSize int64
	// size description, for example "1M"
	Size          string
	UploadTime    time.Time
	IsNew         bool
	Important     bool
	VisitCount    int
	DownloadCount int
	// suffix name of the file, for example "zip", "ppt"
	FileType string
}

type Homework struct {
	CourseId          string
	Id                string
	StudentHomeworkId string
	Title             string
	AssignTime        time.Time
	Deadline          time.Time
	// set once the student has submitted
	SubmitTime    *time.Time
	SubmitContent string
	// set once the teacher has graded
	Grade        *float64
	GradeTime    *time.Time
	GraderName   string
	GradeContent string
	// filled in by the detail-page secondary fetch
	Detail HomeworkDetail
}

// Attachment is a display name plus the absolute download url scraped
// out of a detail page.
type Attachment struct {
	Name        string
	DownloadUrl string
}

// HomeworkDetail only exists scraped out of the homework detail page,
// it is always part of a Homework.
type HomeworkDetail struct {
	// html, required: a detail page without it fails with ParseError
	Description string
	Answer      string
	Submission  string
	// each independently present or absent, in the fixed document
	// order the page renders them
	Attachment       *Attachment
	SubmitAttachment *Attachment
	GradeAttachment  *Attachment
}

// DiscussionBase carries the fields shared by discussions and course
// questions.
type DiscussionBase struct {
	Id            string
	BoardId       string
	Title         string
	PublisherName string
	PublishTime   time.Time
	// "" until somebody replies
	LastReplierName string
	LastReplyTime   *time.Time
	VisitCount      int
	ReplyCount      int
}

type Discussion struct {
	DiscussionBase
}

// Question is a discussion the student asked privately, it
// additionally carries the question text itself.
type Question struct {
	DiscussionBase
	Content string
}

// DiscussionReply is one node of the two-level reply tree under a
// discussion. Sub-replies never nest further, their Replies list is
// always empty.
type DiscussionReply struct {
	// "" exactly for the opening post, which cannot be replied to
	Id          string
	Author      string
	PublishTime time.Time
	// html
	Content string
	Replies []DiscussionReply
}
