package weblearn

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"thuassist-backend/lib/timezone"
	"time"
	"unicode/utf8"
)

// The portal reports wall-clock datetimes in its own timezone with two
// fixed layouts, minute precision on most endpoints and second
// precision on the discussion ones.
const (
	minuteLayout = "2006-01-02 15:04"
	secondLayout = "2006-01-02 15:04:05"
)

// flexString tolerates the server sending a JSON string, a bare
// number, or null for fields that are documented as strings. The raw
// text is kept verbatim, it is never reinterpreted as a number.
type flexString string

func (s *flexString) UnmarshalJSON(raw []byte) error {
	if bytes.Equal(raw, []byte("null")) {
		*s = ""
		return nil
	}
	if len(raw) > 0 && raw[0] == '"' {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return err
		}
		*s = flexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		return err
	}
	*s = flexString(num.String())
	return nil
}

// unwrapResultList handles the `{resultList: [...]}` envelope.
func unwrapResultList(body []byte) ([]json.RawMessage, error) {
	var envelope struct {
		ResultList []json.RawMessage `json:"resultList"`
	}
	err := json.Unmarshal(body, &envelope)
	if err != nil {
		return nil, DecodeError{Field: "resultList", Raw: string(body), Err: err}
	}
	if envelope.ResultList == nil {
		return nil, DecodeError{
			Field: "resultList",
			Raw:   string(body),
			Err:   fmt.Errorf("envelope key is missing"),
		}
	}
	return envelope.ResultList, nil
}

// unwrapObject handles the `{object: ...}` envelope family: the
// payload under `object` is either a bare array, `{aaData: [...]}` or
// `{resultsList: [...]}` depending on the endpoint.
func unwrapObject(body []byte) ([]json.RawMessage, error) {
	var envelope struct {
		Object json.RawMessage `json:"object"`
	}
	err := json.Unmarshal(body, &envelope)
	if err != nil {
		return nil, DecodeError{Field: "object", Raw: string(body), Err: err}
	}
	if len(envelope.Object) == 0 {
		return nil, DecodeError{
			Field: "object",
			Raw:   string(body),
			Err:   fmt.Errorf("envelope key is missing"),
		}
	}

	payload := bytes.TrimLeft(envelope.Object, " \t\r\n")
	if len(payload) > 0 && payload[0] == '[' {
		var items []json.RawMessage
		err := json.Unmarshal(payload, &items)
		if err != nil {
			return nil, DecodeError{Field: "object", Raw: string(payload), Err: err}
		}
		return items, nil
	}

	var inner struct {
		AaData      []json.RawMessage `json:"aaData"`
		ResultsList []json.RawMessage `json:"resultsList"`
	}
	err = json.Unmarshal(payload, &inner)
	if err != nil {
		return nil, DecodeError{Field: "object", Raw: string(payload), Err: err}
	}
	if inner.AaData != nil {
		return inner.AaData, nil
	}
	if inner.ResultsList != nil {
		return inner.ResultsList, nil
	}
	return nil, DecodeError{
		Field: "object",
		Raw:   string(payload),
		Err:   fmt.Errorf("neither aaData nor resultsList is present"),
	}
}

// unwrapNullableStrings handles the bare array of nullable strings the
// semester-id endpoint responds with; nulls are dropped, not errors.
func unwrapNullableStrings(body []byte) ([]string, error) {
	var items []*string
	err := json.Unmarshal(body, &items)
	if err != nil {
		return nil, DecodeError{Field: "semesterIdList", Raw: string(body), Err: err}
	}
	out := []string{}
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, *item)
	}
	return out, nil
}

// decodeList converts every element of a list independently: a record
// that fails to decode is dropped and reported, its siblings survive.
// The joined error comes back alongside the good records.
func decodeList[T any](items []json.RawMessage, decode func(json.RawMessage) (T, error)) ([]T, error) {
	out := make([]T, 0, len(items))
	var errlist []error
	for _, raw := range items {
		v, err := decode(raw)
		if err != nil {
			errlist = append(errlist, err)
			continue
		}
		out = append(out, v)
	}
	return out, errors.Join(errlist...)
}

func parseTime(field, raw, layout string) (time.Time, error) {
	t, err := time.ParseInLocation(layout, raw, timezone.Location)
	if err != nil {
		return time.Time{}, DecodeError{Field: field, Raw: raw, Err: err}
	}
	return t, nil
}

// empty string, null and a missing key all mean absent
func parseOptionalTime(field string, raw *string, layout string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := parseTime(field, *raw, layout)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// the notification read flag is a localized yes-token, anything else
// means false
func yesBool(raw string) bool {
	return raw == "是"
}

func oneBool(raw string) bool {
	return raw == "1"
}

func intBool(raw int) bool {
	return raw != 0
}

// notification bodies arrive base64 encoded; a missing field decodes
// as the empty string before the base64 step
func decodeContent(field string, raw *string) (string, error) {
	encoded := ""
	if raw != nil {
		encoded = *raw
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", DecodeError{Field: field, Raw: encoded, Err: err}
	}
	if !utf8.Valid(decoded) {
		return "", DecodeError{
			Field: field,
			Raw:   encoded,
			Err:   fmt.Errorf("decoded content is not valid utf-8"),
		}
	}
	return string(decoded), nil
}

// "" and null both mean absent
func nonempty(raw *string) string {
	if raw == nil {
		return ""
	}
	return *raw
}

type courseWire struct {
	Wlkcid string     `json:"wlkcid"`
	Kcm    string     `json:"kcm"`
	Ywkcm  string     `json:"ywkcm"`
	Jsm    string     `json:"jsm"`
	Jsh    flexString `json:"jsh"`
	Kch    flexString `json:"kch"`
	Kxh    int        `json:"kxh"`
}

func decodeCourse(raw json.RawMessage) (Course, error) {
	var w courseWire
	err := json.Unmarshal(raw, &w)
	if err != nil {
		return Course{}, DecodeError{Field: "course", Raw: string(raw), Err: err}
	}
	return Course{
		Id:            w.Wlkcid,
		Name:          w.Kcm,
		EnglishName:   w.Ywkcm,
		TeacherName:   w.Jsm,
		TeacherNumber: string(w.Jsh),
		CourseNumber:  string(w.Kch),
		CourseIndex:   w.Kxh,
	}, nil
}

type notificationWire struct {
	Wlkcid  string  `json:"wlkcid"`
	Ggid    string  `json:"ggid"`
	Bt      string  `json:"bt"`
	Ggnr    *string `json:"ggnr"`
	Sfyd    string  `json:"sfyd"`
	Sfqd    string  `json:"sfqd"`
	FbsjStr string  `json:"fbsjStr"`
	Fbrxm   string  `json:"fbrxm"`
	Fjmc    *string `json:"fjmc"`
}

func decodeNotification(raw json.RawMessage) (Notification, error) {
	var w notificationWire
	err := json.Unmarshal(raw, &w)
	if err != nil {
		return Notification{}, DecodeError{Field: "notification", Raw: string(raw), Err: err}
	}
	content, err := decodeContent("ggnr", w.Ggnr)
	if err != nil {
		return Notification{}, err
	}
	publishTime, err := parseTime("fbsjStr", w.FbsjStr, minuteLayout)
	if err != nil {
		return Notification{}, err
	}
	return Notification{
		CourseId:       w.Wlkcid,
		Id:             w.Ggid,
		Title:          w.Bt,
		Content:        content,
		Read:           yesBool(w.Sfyd),
		Important:      oneBool(w.Sfqd),
		PublishTime:    publishTime,
		Publisher:      w.Fbrxm,
		AttachmentName: nonempty(w.Fjmc),
	}, nil
}

type fileWire struct {
	Wjid     string `json:"wjid"`
	Bt       string `json:"bt"`
	Ms       string `json:"ms"`
	Wjdx     int64  `json:"wjdx"`
	FileSize string `json:"fileSize"`
	Scsj     string `json:"scsj"`
	IsNew    int    `json:"isNew"`
	Sfqd     int    `json:"sfqd"`
	Llcs     int    `json:"llcs"`
	Xzcs     int    `json:"xzcs"`
	Wjlx     string `json:"wjlx"`
}

func decodeFile(raw json.RawMessage) (File, error) {
	var w fileWire
	err := json.Unmarshal(raw, &w)
	if err != nil {
		return File{}, DecodeError{Field: "file", Raw: string(raw), Err: err}
	}
	uploadTime, err := parseTime("scsj", w.Scsj, minuteLayout)
	if err != nil {
		return File{}, err
	}
	return File{
		Id:            w.Wjid,
		Title:         w.Bt,
		Description:   w.Ms,
		RawSize:       w.Wjdx,
		Size:          w.FileSize,
		UploadTime:    uploadTime,
		IsNew:         intBool(w.IsNew),
		Important:     intBool(w.Sfqd),
		VisitCount:    w.Llcs,
		DownloadCount: w.Xzcs,
		FileType:      w.Wjlx,
	}, nil
}

type homeworkWire struct {
	Wlkcid  string   `json:"wlkcid"`
	Zyid    string   `json:"zyid"`
	Xszyid  string   `json:"xszyid"`
	Bt      string   `json:"bt"`
	KssjStr string   `json:"kssjStr"`
	JzsjStr string   `json:"jzsjStr"`
	ScsjStr *string  `json:"scsjStr"`
	ZynrStr *string  `json:"zynrStr"`
	Cj      *float64 `json:"cj"`
	PysjStr *string  `json:"pysjStr"`
	Jsm     *string  `json:"jsm"`
	Pynr    *string  `json:"pynr"`
}

func decodeHomework(raw json.RawMessage) (Homework, error) {
	var w homeworkWire
	err := json.Unmarshal(raw, &w)
	if err != nil {
		return Homework{}, DecodeError{Field: "homework", Raw: string(raw), Err: err}
	}
	assignTime, err := parseTime("kssjStr", w.KssjStr, minuteLayout)
	if err != nil {
		return Homework{}, err
	}
	deadline, err := parseTime("jzsjStr", w.JzsjStr, minuteLayout)
	if err != nil {
		return Homework{}, err
	}
	submitTime, err := parseOptionalTime("scsjStr", w.ScsjStr, minuteLayout)
	if err != nil {
		return Homework{}, err
	}
	gradeTime, err := parseOptionalTime("pysjStr", w.PysjStr, minuteLayout)
	if err != nil {
		return Homework{}, err
	}
	return Homework{
		CourseId:          w.Wlkcid,
		Id:                w.Zyid,
		StudentHomeworkId: w.Xszyid,
		Title:             w.Bt,
		AssignTime:        assignTime,
		Deadline:          deadline,
		SubmitTime:        submitTime,
		SubmitContent:     nonempty(w.ZynrStr),
		Grade:             w.Cj,
		GradeTime:         gradeTime,
		GraderName:        nonempty(w.Jsm),
		GradeContent:      nonempty(w.Pynr),
	}, nil
}

type discussionWire struct {
	Id      flexString `json:"id"`
	Bqid    flexString `json:"bqid"`
	Bt      string     `json:"bt"`
	Fbrxm   string     `json:"fbrxm"`
	Fbsj    string     `json:"fbsj"`
	Zhhfrxm *string    `json:"zhhfrxm"`
	Zhhfsj  *string    `json:"zhhfsj"`
	Djs     int        `json:"djs"`
	Hfcs    int        `json:"hfcs"`
	Wtnr    *string    `json:"wtnr"`
}

func decodeDiscussionBase(raw json.RawMessage) (DiscussionBase, *discussionWire, error) {
	var w discussionWire
	err := json.Unmarshal(raw, &w)
	if err != nil {
		return DiscussionBase{}, nil, DecodeError{Field: "discussion", Raw: string(raw), Err: err}
	}
	publishTime, err := parseTime("fbsj", w.Fbsj, secondLayout)
	if err != nil {
		return DiscussionBase{}, nil, err
	}
	lastReplyTime, err := parseOptionalTime("zhhfsj", w.Zhhfsj, secondLayout)
	if err != nil {
		return DiscussionBase{}, nil, err
	}
	return DiscussionBase{
		Id:              string(w.Id),
		BoardId:         string(w.Bqid),
		Title:           w.Bt,
		PublisherName:   w.Fbrxm,
		PublishTime:     publishTime,
		LastReplierName: nonempty(w.Zhhfrxm),
		LastReplyTime:   lastReplyTime,
		VisitCount:      w.Djs,
		ReplyCount:      w.Hfcs,
	}, &w, nil
}

func decodeDiscussion(raw json.RawMessage) (Discussion, error) {
	base, _, err := decodeDiscussionBase(raw)
	if err != nil {
		return Discussion{}, err
	}
	return Discussion{DiscussionBase: base}, nil
}

func decodeQuestion(raw json.RawMessage) (Question, error) {
	base, w, err := decodeDiscussionBase(raw)
	if err != nil {
		return Question{}, err
	}
	return Question{
		DiscussionBase: base,
		Content:        nonempty(w.Wtnr),
	}, nil
}
