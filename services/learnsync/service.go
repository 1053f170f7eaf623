// Package learnsync mirrors the content of selected portal courses
// into a local sqlite database, so notifications, files and homework
// survive the portal's semester cleanup and stay greppable offline.
package learnsync

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"thuassist-backend/lib/joinutil"
	"thuassist-backend/lib/scrapers/weblearn"
	"thuassist-backend/lib/telemetry"
	"thuassist-backend/lib/timezone"
	"thuassist-backend/services/learnsync/db"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("thuassist.services.learnsync")

type Service struct {
	db     *sql.DB
	qry    *db.Queries
	client *weblearn.Client
}

func NewService(database *sql.DB, client *weblearn.Client) Service {
	return Service{
		db:     database,
		qry:    db.New(database),
		client: client,
	}
}

type SyncRequest struct {
	SemesterId string
	// course names resolved by fuzzy match; empty syncs every course
	// of the semester
	Courses []string
}

type CourseSyncResult struct {
	CourseId      string
	CourseName    string
	Notifications int
	Files         int
	Homework      int
	Discussions   int
	Questions     int
}

// Sync pulls the selected courses and replaces their local mirror in
// one transaction per course, so an interrupted sync never leaves a
// course half-written.
func (s Service) Sync(ctx context.Context, req SyncRequest) ([]CourseSyncResult, error) {
	ctx, span := tracer.Start(ctx, "Sync")
	defer span.End()

	span.SetAttributes(attribute.String("semester", req.SemesterId))

	courses, err := s.client.CourseList(ctx, req.SemesterId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch course list")
		return nil, err
	}
	selected, err := selectCourses(courses, req.Courses)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	results := make([]CourseSyncResult, 0, len(selected))
	for _, course := range selected {
		result, err := s.syncCourse(ctx, req.SemesterId, course)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to sync course")
			return nil, err
		}
		slog.InfoContext(ctx, "synced course",
			"course", course.Name,
			"notifications", result.Notifications,
			"files", result.Files,
			"homework", result.Homework,
		)
		results = append(results, result)
	}
	return results, nil
}

func (s Service) syncCourse(ctx context.Context, semester string, course weblearn.Course) (CourseSyncResult, error) {
	ctx, span := tracer.Start(ctx, "syncCourse")
	defer span.End()

	span.SetAttributes(attribute.String("course", course.Id))

	var notifications []weblearn.Notification
	var files []weblearn.File
	var homework []weblearn.Homework
	var discussions []weblearn.Discussion
	var questions []weblearn.Question
	fetches := []func(ctx context.Context) error{
		func(ctx context.Context) error {
			var err error
			notifications, err = s.client.NotificationList(ctx, course.Id)
			return err
		},
		func(ctx context.Context) error {
			var err error
			files, err = s.client.FileList(ctx, course.Id)
			return err
		},
		func(ctx context.Context) error {
			var err error
			homework, err = s.client.HomeworkList(ctx, course.Id)
			return err
		},
		func(ctx context.Context) error {
			var err error
			discussions, err = s.client.DiscussionList(ctx, course.Id)
			return err
		},
		func(ctx context.Context) error {
			var err error
			questions, err = s.client.QuestionList(ctx, course.Id)
			return err
		},
	}
	err := joinutil.TryJoinAll(ctx, len(fetches), func(ctx context.Context, i int) error {
		return fetches[i](ctx)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch course content")
		return CourseSyncResult{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return CourseSyncResult{}, err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	err = txqry.UpsertCourse(ctx, db.UpsertCourseParams{
		ID:           course.Id,
		SemesterID:   semester,
		Name:         course.Name,
		EnglishName:  course.EnglishName,
		TeacherName:  course.TeacherName,
		TimeLocation: strings.Join(course.TimeLocation, "\n"),
		SyncedAt:     timezone.Now().Unix(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return CourseSyncResult{}, err
	}
	err = txqry.DeleteCourseContent(ctx, course.Id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return CourseSyncResult{}, err
	}

	for _, n := range notifications {
		err := txqry.CreateNotification(ctx, db.CreateNotificationParams{
			ID:             n.Id,
			CourseID:       n.CourseId,
			Title:          n.Title,
			Content:        n.Content,
			Read:           n.Read,
			Important:      n.Important,
			PublishTime:    n.PublishTime.Unix(),
			Publisher:      n.Publisher,
			AttachmentName: n.AttachmentName,
			AttachmentUrl:  n.AttachmentUrl,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return CourseSyncResult{}, err
		}
	}
	for _, f := range files {
		err := txqry.CreateFile(ctx, db.CreateFileParams{
			ID:            f.Id,
			CourseID:      course.Id,
			Title:         f.Title,
			Description:   f.Description,
			RawSize:       f.RawSize,
			Size:          f.Size,
			UploadTime:    f.UploadTime.Unix(),
			IsNew:         f.IsNew,
			Important:     f.Important,
			VisitCount:    int64(f.VisitCount),
			DownloadCount: int64(f.DownloadCount),
			FileType:      f.FileType,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return CourseSyncResult{}, err
		}
	}
	for _, hw := range homework {
		err := txqry.CreateHomework(ctx, db.CreateHomeworkParams{
			ID:                hw.Id,
			CourseID:          hw.CourseId,
			StudentHomeworkID: hw.StudentHomeworkId,
			Title:             hw.Title,
			Description:       hw.Detail.Description,
			AssignTime:        hw.AssignTime.Unix(),
			Deadline:          hw.Deadline.Unix(),
			SubmitTime:        nullUnix(hw.SubmitTime),
			SubmitContent:     hw.SubmitContent,
			Grade:             nullFloat(hw.Grade),
			GradeTime:         nullUnix(hw.GradeTime),
			GraderName:        hw.GraderName,
			GradeContent:      hw.GradeContent,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return CourseSyncResult{}, err
		}
	}

	for _, d := range discussions {
		err := txqry.CreateDiscussion(ctx, discussionParams(
			course.Id, db.DiscussionKindDiscussion, d.DiscussionBase, "",
		))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return CourseSyncResult{}, err
		}
	}
	for _, q := range questions {
		err := txqry.CreateDiscussion(ctx, discussionParams(
			course.Id, db.DiscussionKindQuestion, q.DiscussionBase, q.Content,
		))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return CourseSyncResult{}, err
		}
	}

	err = tx.Commit()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return CourseSyncResult{}, err
	}
	return CourseSyncResult{
		CourseId:      course.Id,
		CourseName:    course.Name,
		Notifications: len(notifications),
		Files:         len(files),
		Homework:      len(homework),
		Discussions:   len(discussions),
		Questions:     len(questions),
	}, nil
}

func discussionParams(courseId, kind string, base weblearn.DiscussionBase, content string) db.CreateDiscussionParams {
	return db.CreateDiscussionParams{
		ID:              base.Id,
		CourseID:        courseId,
		Kind:            kind,
		BoardID:         base.BoardId,
		Title:           base.Title,
		Content:         content,
		PublisherName:   base.PublisherName,
		PublishTime:     base.PublishTime.Unix(),
		LastReplierName: base.LastReplierName,
		LastReplyTime:   nullUnix(base.LastReplyTime),
		VisitCount:      int64(base.VisitCount),
		ReplyCount:      int64(base.ReplyCount),
	}
}

// Courses lists the locally mirrored courses.
func (s Service) Courses(ctx context.Context) ([]db.Course, error) {
	ctx, span := tracer.Start(ctx, "Courses")
	defer span.End()

	courses, err := s.qry.ListCourses(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return courses, nil
}

type CourseContent struct {
	Course        db.Course
	Notifications []db.Notification
	Files         []db.File
	Homework      []db.Homework
	Discussions   []db.Discussion
}

// CourseContent reads back everything mirrored for one course.
func (s Service) CourseContent(ctx context.Context, courseId string) (CourseContent, error) {
	ctx, span := tracer.Start(ctx, "CourseContent")
	defer span.End()

	span.SetAttributes(attribute.String("course", courseId))

	course, err := s.qry.GetCourse(ctx, courseId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return CourseContent{}, err
	}
	notifications, err := s.qry.ListNotifications(ctx, courseId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return CourseContent{}, err
	}
	files, err := s.qry.ListFiles(ctx, courseId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return CourseContent{}, err
	}
	homework, err := s.qry.ListHomework(ctx, courseId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return CourseContent{}, err
	}
	discussions, err := s.qry.ListDiscussions(ctx, courseId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return CourseContent{}, err
	}
	return CourseContent{
		Course:        course,
		Notifications: notifications,
		Files:         files,
		Homework:      homework,
		Discussions:   discussions,
	}, nil
}

func nullUnix(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
