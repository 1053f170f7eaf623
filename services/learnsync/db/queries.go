package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Course struct {
	ID           string
	SemesterID   string
	Name         string
	EnglishName  string
	TeacherName  string
	TimeLocation string
	SyncedAt     int64
}

type Notification struct {
	ID             string
	CourseID       string
	Title          string
	Content        string
	Read           bool
	Important      bool
	PublishTime    int64
	Publisher      string
	AttachmentName string
	AttachmentUrl  string
}

type File struct {
	ID            string
	CourseID      string
	Title         string
	Description   string
	RawSize       int64
	Size          string
	UploadTime    int64
	IsNew         bool
	Important     bool
	VisitCount    int64
	DownloadCount int64
	FileType      string
}

// Kind values stored in the discussions table; questions share the
// table since they only add the question text.
const (
	DiscussionKindDiscussion = "discussion"
	DiscussionKindQuestion   = "question"
)

type Discussion struct {
	ID              string
	CourseID        string
	Kind            string
	BoardID         string
	Title           string
	Content         string
	PublisherName   string
	PublishTime     int64
	LastReplierName string
	LastReplyTime   sql.NullInt64
	VisitCount      int64
	ReplyCount      int64
}

type Homework struct {
	ID                string
	CourseID          string
	StudentHomeworkID string
	Title             string
	Description       string
	AssignTime        int64
	Deadline          int64
	SubmitTime        sql.NullInt64
	SubmitContent     string
	Grade             sql.NullFloat64
	GradeTime         sql.NullInt64
	GraderName        string
	GradeContent      string
}

const upsertCourse = `-- name: UpsertCourse :exec
INSERT INTO courses (id, semester_id, name, english_name, teacher_name, time_location, synced_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    semester_id = excluded.semester_id,
    name = excluded.name,
    english_name = excluded.english_name,
    teacher_name = excluded.teacher_name,
    time_location = excluded.time_location,
    synced_at = excluded.synced_at
`

type UpsertCourseParams struct {
	ID           string
	SemesterID   string
	Name         string
	EnglishName  string
	TeacherName  string
	TimeLocation string
	SyncedAt     int64
}

func (q *Queries) UpsertCourse(ctx context.Context, arg UpsertCourseParams) error {
	_, err := q.db.ExecContext(ctx, upsertCourse,
		arg.ID,
		arg.SemesterID,
		arg.Name,
		arg.EnglishName,
		arg.TeacherName,
		arg.TimeLocation,
		arg.SyncedAt,
	)
	return err
}

// DeleteCourseContent clears all synced content of a course so a fresh
// sync never leaves rows the portal no longer reports.
func (q *Queries) DeleteCourseContent(ctx context.Context, courseID string) error {
	for _, stmt := range []string{
		`DELETE FROM notifications WHERE course_id = ?`,
		`DELETE FROM files WHERE course_id = ?`,
		`DELETE FROM homework WHERE course_id = ?`,
		`DELETE FROM discussions WHERE course_id = ?`,
	} {
		_, err := q.db.ExecContext(ctx, stmt, courseID)
		if err != nil {
			return err
		}
	}
	return nil
}

const createNotification = `-- name: CreateNotification :exec
INSERT INTO notifications (id, course_id, title, content, read, important, publish_time, publisher, attachment_name, attachment_url)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateNotificationParams struct {
	ID             string
	CourseID       string
	Title          string
	Content        string
	Read           bool
	Important      bool
	PublishTime    int64
	Publisher      string
	AttachmentName string
	AttachmentUrl  string
}

func (q *Queries) CreateNotification(ctx context.Context, arg CreateNotificationParams) error {
	_, err := q.db.ExecContext(ctx, createNotification,
		arg.ID,
		arg.CourseID,
		arg.Title,
		arg.Content,
		arg.Read,
		arg.Important,
		arg.PublishTime,
		arg.Publisher,
		arg.AttachmentName,
		arg.AttachmentUrl,
	)
	return err
}

const createFile = `-- name: CreateFile :exec
INSERT INTO files (id, course_id, title, description, raw_size, size, upload_time, is_new, important, visit_count, download_count, file_type)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateFileParams struct {
	ID            string
	CourseID      string
	Title         string
	Description   string
	RawSize       int64
	Size          string
	UploadTime    int64
	IsNew         bool
	Important     bool
	VisitCount    int64
	DownloadCount int64
	FileType      string
}

func (q *Queries) CreateFile(ctx context.Context, arg CreateFileParams) error {
	_, err := q.db.ExecContext(ctx, createFile,
		arg.ID,
		arg.CourseID,
		arg.Title,
		arg.Description,
		arg.RawSize,
		arg.Size,
		arg.UploadTime,
		arg.IsNew,
		arg.Important,
		arg.VisitCount,
		arg.DownloadCount,
		arg.FileType,
	)
	return err
}

const createDiscussion = `-- name: CreateDiscussion :exec
INSERT INTO discussions (id, course_id, kind, board_id, title, content, publisher_name, publish_time, last_replier_name, last_reply_time, visit_count, reply_count)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateDiscussionParams struct {
	ID              string
	CourseID        string
	Kind            string
	BoardID         string
	Title           string
	Content         string
	PublisherName   string
	PublishTime     int64
	LastReplierName string
	LastReplyTime   sql.NullInt64
	VisitCount      int64
	ReplyCount      int64
}

func (q *Queries) CreateDiscussion(ctx context.Context, arg CreateDiscussionParams) error {
	_, err := q.db.ExecContext(ctx, createDiscussion,
		arg.ID,
		arg.CourseID,
		arg.Kind,
		arg.BoardID,
		arg.Title,
		arg.Content,
		arg.PublisherName,
		arg.PublishTime,
		arg.LastReplierName,
		arg.LastReplyTime,
		arg.VisitCount,
		arg.ReplyCount,
	)
	return err
}

const createHomework = `-- name: CreateHomework :exec
INSERT INTO homework (id, course_id, student_homework_id, title, description, assign_time, deadline, submit_time, submit_content, grade, grade_time, grader_name, grade_content)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateHomeworkParams struct {
	ID                string
	CourseID          string
	StudentHomeworkID string
	Title             string
	Description       string
	AssignTime        int64
	Deadline          int64
	SubmitTime        sql.NullInt64
	SubmitContent     string
	Grade             sql.NullFloat64
	GradeTime         sql.NullInt64
	GraderName        string
	GradeContent      string
}

func (q *Queries) CreateHomework(ctx context.Context, arg CreateHomeworkParams) error {
	_, err := q.db.ExecContext(ctx, createHomework,
		arg.ID,
		arg.CourseID,
		arg.StudentHomeworkID,
		arg.Title,
		arg.Description,
		arg.AssignTime,
		arg.Deadline,
		arg.SubmitTime,
		arg.SubmitContent,
		arg.Grade,
		arg.GradeTime,
		arg.GraderName,
		arg.GradeContent,
	)
	return err
}

const listCourses = `-- name: ListCourses :many
SELECT id, semester_id, name, english_name, teacher_name, time_location, synced_at
FROM courses
ORDER BY name
`

func (q *Queries) ListCourses(ctx context.Context) ([]Course, error) {
	rows, err := q.db.QueryContext(ctx, listCourses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Course
	for rows.Next() {
		var i Course
		err := rows.Scan(
			&i.ID,
			&i.SemesterID,
			&i.Name,
			&i.EnglishName,
			&i.TeacherName,
			&i.TimeLocation,
			&i.SyncedAt,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getCourse = `-- name: GetCourse :one
SELECT id, semester_id, name, english_name, teacher_name, time_location, synced_at
FROM courses
WHERE id = ?
`

func (q *Queries) GetCourse(ctx context.Context, id string) (Course, error) {
	row := q.db.QueryRowContext(ctx, getCourse, id)
	var i Course
	err := row.Scan(
		&i.ID,
		&i.SemesterID,
		&i.Name,
		&i.EnglishName,
		&i.TeacherName,
		&i.TimeLocation,
		&i.SyncedAt,
	)
	return i, err
}

const listNotifications = `-- name: ListNotifications :many
SELECT id, course_id, title, content, read, important, publish_time, publisher, attachment_name, attachment_url
FROM notifications
WHERE course_id = ?
ORDER BY publish_time DESC
`

func (q *Queries) ListNotifications(ctx context.Context, courseID string) ([]Notification, error) {
	rows, err := q.db.QueryContext(ctx, listNotifications, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Notification
	for rows.Next() {
		var i Notification
		err := rows.Scan(
			&i.ID,
			&i.CourseID,
			&i.Title,
			&i.Content,
			&i.Read,
			&i.Important,
			&i.PublishTime,
			&i.Publisher,
			&i.AttachmentName,
			&i.AttachmentUrl,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const listFiles = `-- name: ListFiles :many
SELECT id, course_id, title, description, raw_size, size, upload_time, is_new, important, visit_count, download_count, file_type
FROM files
WHERE course_id = ?
ORDER BY upload_time DESC
`

func (q *Queries) ListFiles(ctx context.Context, courseID string) ([]File, error) {
	rows, err := q.db.QueryContext(ctx, listFiles, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []File
	for rows.Next() {
		var i File
		err := rows.Scan(
			&i.ID,
			&i.CourseID,
			&i.Title,
			&i.Description,
			&i.RawSize,
			&i.Size,
			&i.UploadTime,
			&i.IsNew,
			&i.Important,
			&i.VisitCount,
			&i.DownloadCount,
			&i.FileType,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const listDiscussions = `-- name: ListDiscussions :many
SELECT id, course_id, kind, board_id, title, content, publisher_name, publish_time, last_replier_name, last_reply_time, visit_count, reply_count
FROM discussions
WHERE course_id = ?
ORDER BY publish_time DESC
`

func (q *Queries) ListDiscussions(ctx context.Context, courseID string) ([]Discussion, error) {
	rows, err := q.db.QueryContext(ctx, listDiscussions, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Discussion
	for rows.Next() {
		var i Discussion
		err := rows.Scan(
			&i.ID,
			&i.CourseID,
			&i.Kind,
			&i.BoardID,
			&i.Title,
			&i.Content,
			&i.PublisherName,
			&i.PublishTime,
			&i.LastReplierName,
			&i.LastReplyTime,
			&i.VisitCount,
			&i.ReplyCount,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const listHomework = `-- name: ListHomework :many
SELECT id, course_id, student_homework_id, title, description, assign_time, deadline, submit_time, submit_content, grade, grade_time, grader_name, grade_content
FROM homework
WHERE course_id = ?
ORDER BY deadline
`

func (q *Queries) ListHomework(ctx context.Context, courseID string) ([]Homework, error) {
	rows, err := q.db.QueryContext(ctx, listHomework, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Homework
	for rows.Next() {
		var i Homework
		err := rows.Scan(
			&i.ID,
			&i.CourseID,
			&i.StudentHomeworkID,
			&i.Title,
			&i.Description,
			&i.AssignTime,
			&i.Deadline,
			&i.SubmitTime,
			&i.SubmitContent,
			&i.Grade,
			&i.GradeTime,
			&i.GraderName,
			&i.GradeContent,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
