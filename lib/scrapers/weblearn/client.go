// Package weblearn scrapes the university's web-learning portal: a
// ticket-based sso login, a handful of JSON list endpoints with
// inconsistent envelopes, and HTML detail pages that need scraping.
// Every list operation follows the same shape, fetch the list, then
// enrich each element concurrently with its own secondary fetch.
package weblearn

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/cookiejar"
	"strings"
	"thuassist-backend/lib/joinutil"
	"thuassist-backend/lib/restyutil"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

// Client is the authenticated session handle. It is safe to share
// across concurrently in-flight operations: after Login nothing
// mutates it except the server refreshing its own cookies.
type Client struct {
	Http *resty.Client
	urls endpoints
}

type ClientOptions struct {
	// base url of the course platform, defaults to the production
	// portal
	LearnUrl string
	// base url of the id server the sso ticket comes from
	AuthUrl string
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	learnUrl := strings.TrimSuffix(opts.LearnUrl, "/")
	if learnUrl == "" {
		learnUrl = DefaultLearnUrl
	}
	authUrl := strings.TrimSuffix(opts.AuthUrl, "/")
	if authUrl == "" {
		authUrl = DefaultAuthUrl
	}

	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.SetHeader("user-agent", userAgent)

	restyutil.InstrumentClient(client, tracer, restyInstrumentOutput)

	return &Client{
		Http: client,
		urls: endpoints{learn: learnUrl, auth: authUrl},
	}, nil
}

// Login performs the sso ticket exchange. The login endpoint's body
// must contain a `ticket="..."` fragment; posting that ticket to the
// roam endpoint is what sets the session cookies that authenticate
// every later request.
func (c *Client) Login(ctx context.Context, username, password string) error {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"i_user": username,
			"i_pass": password,
			"atOnce": "true",
		}).
		Post(c.urls.login())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to make login request")
		return err
	}

	body := res.String()
	start := strings.Index(body, "ticket=")
	if start < 0 {
		span.SetStatus(codes.Error, ErrTicketNotFound.Error())
		return ErrTicketNotFound
	}
	start += len("ticket=")
	length := strings.Index(body[start:], `"`)
	if length < 0 {
		span.SetStatus(codes.Error, ErrTicketNotFound.Error())
		return ErrTicketNotFound
	}

	_, err = c.Http.R().
		SetContext(ctx).
		Post(c.urls.authRoam(body[start : start+length]))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to roam sso ticket")
		return err
	}
	return nil
}

// Logout ends the session on the server and drops the local cookie
// jar. The client must not be used afterwards.
func (c *Client) Logout(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "client:Logout")
	defer span.End()

	_, err := c.Http.R().
		SetContext(ctx).
		Post(c.urls.logout())

	if jar, jarErr := cookiejar.New(nil); jarErr == nil {
		c.Http.SetCookieJar(jar)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to make logout request")
	}
	return err
}

func (c *Client) SemesterIdList(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "client:SemesterIdList")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(c.urls.semesterIdList())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch semester ids")
		return nil, err
	}
	return unwrapNullableStrings(res.Body())
}

// CourseList fetches the course records of a semester, then attaches
// every course's time/location list with one concurrent secondary
// fetch per course.
//
// Records that fail to decode are dropped and reported through the
// returned error while their siblings come back fully enriched.
func (c *Client) CourseList(ctx context.Context, semester string) ([]Course, error) {
	ctx, span := tracer.Start(ctx, "client:CourseList")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(c.urls.courseList(semester))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch course list")
		return nil, err
	}
	items, err := unwrapResultList(res.Body())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to unwrap course list")
		return nil, err
	}
	courses, decodeErr := decodeList(items, decodeCourse)

	err = joinutil.TryJoinAll(ctx, len(courses), func(ctx context.Context, i int) error {
		res, err := c.Http.R().
			SetContext(ctx).
			Get(c.urls.courseTimeLocation(courses[i].Id))
		if err != nil {
			return err
		}
		var timeLocation []string
		err = json.Unmarshal(res.Body(), &timeLocation)
		if err != nil {
			return DecodeError{Field: "timeLocation", Raw: res.String(), Err: err}
		}
		courses[i].TimeLocation = timeLocation
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch course time/locations")
		return nil, err
	}
	return courses, decodeErr
}

// NotificationList fetches a course's notifications and scrapes the
// attachment link off the detail page of every notification that
// declares an attachment name; the others skip the secondary fetch.
func (c *Client) NotificationList(ctx context.Context, course string) ([]Notification, error) {
	ctx, span := tracer.Start(ctx, "client:NotificationList")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(c.urls.notificationList(course))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch notification list")
		return nil, err
	}
	items, err := unwrapObject(res.Body())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to unwrap notification list")
		return nil, err
	}
	notifications, decodeErr := decodeList(items, decodeNotification)

	err = joinutil.TryJoinAll(ctx, len(notifications), func(ctx context.Context, i int) error {
		if notifications[i].AttachmentName == "" {
			return nil
		}
		res, err := c.Http.R().
			SetContext(ctx).
			Get(c.urls.notificationDetail(notifications[i].Id, course))
		if err != nil {
			return err
		}
		link, err := parseNotificationAttachment(c.urls.learn, res.Body())
		if err != nil {
			return err
		}
		notifications[i].AttachmentUrl = link
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch notification attachments")
		return nil, err
	}
	return notifications, decodeErr
}

func (c *Client) FileList(ctx context.Context, course string) ([]File, error) {
	ctx, span := tracer.Start(ctx, "client:FileList")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(c.urls.fileList(course))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch file list")
		return nil, err
	}
	items, err := unwrapObject(res.Body())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to unwrap file list")
		return nil, err
	}
	return decodeList(items, decodeFile)
}

// HomeworkList queries the three homework list variants concurrently,
// scrapes every item's detail page, and concatenates the results
// strictly in endpoint order: unsubmitted, then ungraded, then graded.
func (c *Client) HomeworkList(ctx context.Context, course string) ([]Homework, error) {
	ctx, span := tracer.Start(ctx, "client:HomeworkList")
	defer span.End()

	var lists [3][]Homework
	var decodeErrs [3]error
	fetch := func(k int, listUrl string) func(ctx context.Context) error {
		return func(ctx context.Context) error {
			res, err := c.Http.R().
				SetContext(ctx).
				Get(listUrl)
			if err != nil {
				return err
			}
			items, err := unwrapObject(res.Body())
			if err != nil {
				return err
			}
			homework, decodeErr := decodeList(items, decodeHomework)
			decodeErrs[k] = decodeErr

			err = joinutil.TryJoinAll(ctx, len(homework), func(ctx context.Context, i int) error {
				res, err := c.Http.R().
					SetContext(ctx).
					Get(c.urls.homeworkDetail(
						homework[i].CourseId,
						homework[i].Id,
						homework[i].StudentHomeworkId,
					))
				if err != nil {
					return err
				}
				detail, err := parseHomeworkDetail(c.urls.learn, res.Body())
				if err != nil {
					return err
				}
				homework[i].Detail = detail
				return nil
			})
			if err != nil {
				return err
			}
			lists[k] = homework
			return nil
		}
	}

	err := joinutil.TryJoin3(
		ctx,
		fetch(0, c.urls.homeworkListUnsubmitted(course)),
		fetch(1, c.urls.homeworkListUngraded(course)),
		fetch(2, c.urls.homeworkListGraded(course)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch homework lists")
		return nil, err
	}

	out := make([]Homework, 0, len(lists[0])+len(lists[1])+len(lists[2]))
	for _, list := range lists {
		out = append(out, list...)
	}
	return out, errors.Join(decodeErrs[:]...)
}

func (c *Client) DiscussionList(ctx context.Context, course string) ([]Discussion, error) {
	ctx, span := tracer.Start(ctx, "client:DiscussionList")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(c.urls.discussionList(course))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch discussion list")
		return nil, err
	}
	items, err := unwrapObject(res.Body())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to unwrap discussion list")
		return nil, err
	}
	return decodeList(items, decodeDiscussion)
}

func (c *Client) QuestionList(ctx context.Context, course string) ([]Question, error) {
	ctx, span := tracer.Start(ctx, "client:QuestionList")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(c.urls.questionList(course))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch question list")
		return nil, err
	}
	items, err := unwrapObject(res.Body())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to unwrap question list")
		return nil, err
	}
	return decodeList(items, decodeQuestion)
}

// DiscussionReplies fetches and parses the reply tree of one
// discussion.
func (c *Client) DiscussionReplies(ctx context.Context, course, discussion, board string) ([]DiscussionReply, error) {
	ctx, span := tracer.Start(ctx, "client:DiscussionReplies")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(c.urls.discussionReplies(course, discussion, board))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch discussion replies")
		return nil, err
	}
	return parseDiscussionReplies(res.Body())
}

// Browser-visible urls for the records, kept on the client because the
// host prefix lives in its endpoint table.

func (c *Client) CourseUrl(course Course) string {
	return c.urls.courseHomepage(course.Id)
}

func (c *Client) NotificationUrl(n Notification) string {
	return c.urls.notificationDetail(n.Id, n.CourseId)
}

func (c *Client) FileDownloadUrl(f File) string {
	return c.urls.fileDownload(f.Id)
}

func (c *Client) HomeworkUrl(h Homework) string {
	return c.urls.homeworkDetail(h.CourseId, h.Id, h.StudentHomeworkId)
}

func (c *Client) HomeworkSubmitPageUrl(h Homework) string {
	return c.urls.homeworkSubmitPage(h.CourseId, h.StudentHomeworkId)
}
