package weblearn

import (
	"bytes"
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

// The write endpoints always answer 200; success is decided by this
// marker appearing somewhere in the response body.
const successMarker = "success"

// the deletion endpoint is known to hang up instead of answering, see
// DeleteDiscussionReply
const deleteReplyTimeout = time.Second * 3

// UploadFile is an optional multipart file part. When absent the
// portal still expects the field, filled with the literal placeholder
// "undefined".
type UploadFile struct {
	Name string
	Data []byte
}

func setUploadFile(req *resty.Request, file *UploadFile) {
	if file == nil {
		req.SetMultipartFormData(map[string]string{"fileupload": "undefined"})
		return
	}
	req.SetFileReader("fileupload", file.Name, bytes.NewReader(file.Data))
}

type SubmitHomeworkRequest struct {
	StudentHomeworkId string
	Content           string
	Attachment        *UploadFile
}

func (c *Client) SubmitHomework(ctx context.Context, req SubmitHomeworkRequest) error {
	ctx, span := tracer.Start(ctx, "client:SubmitHomework")
	defer span.End()

	r := c.Http.R().
		SetContext(ctx).
		SetMultipartFormData(map[string]string{
			"zynr":      req.Content,
			"xszyid":    req.StudentHomeworkId,
			"isDeleted": "0",
		})
	setUploadFile(r, req.Attachment)

	res, err := r.Post(c.urls.homeworkSubmit())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to make submit request")
		return err
	}
	if !strings.Contains(res.String(), successMarker) {
		err := DomainError{Op: "submit homework"}
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

type ReplyDiscussionRequest struct {
	CourseId     string
	DiscussionId string
	Content      string
	// id of the reply being responded to; "" replies to the
	// discussion itself
	RespondentReplyId string
	Attachment        *UploadFile
}

func (c *Client) ReplyDiscussion(ctx context.Context, req ReplyDiscussionRequest) error {
	ctx, span := tracer.Start(ctx, "client:ReplyDiscussion")
	defer span.End()

	fields := map[string]string{
		"wlkcid": req.CourseId,
		"tltid":  req.DiscussionId,
		"nr":     req.Content,
	}
	if req.RespondentReplyId != "" {
		fields["fhhid"] = req.RespondentReplyId
		fields["_fhhid"] = req.RespondentReplyId
	}

	r := c.Http.R().
		SetContext(ctx).
		SetMultipartFormData(fields)
	setUploadFile(r, req.Attachment)

	res, err := r.Post(c.urls.replyDiscussion())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to make reply request")
		return err
	}
	if !strings.Contains(res.String(), successMarker) {
		err := DomainError{Op: "reply discussion"}
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// DeleteDiscussionReply posts the deletion under a bounded timeout.
// The server drops the connection instead of answering this endpoint,
// so a timeout here counts as success; any other transport error is
// still a hard failure. This quirk is specific to deletion and must
// not spread to other endpoints.
func (c *Client) DeleteDiscussionReply(ctx context.Context, course, reply string) error {
	ctx, span := tracer.Start(ctx, "client:DeleteDiscussionReply")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, deleteReplyTimeout)
	defer cancel()

	_, err := c.Http.R().
		SetContext(ctx).
		Post(c.urls.deleteDiscussionReply(course, reply))
	if err != nil {
		if isTimeout(err) {
			span.AddEvent("deletion timed out, treating as success")
			return nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to make delete request")
		return err
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
