package weblearn

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"thuassist-backend/lib/telemetry"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/weblearn")
	t.Cleanup(cleanup)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(context.Background(), ClientOptions{
		LearnUrl: server.URL,
		AuthUrl:  server.URL,
	})
	require.NoError(t, err)
	return client, server
}

func TestLoginTicketFlow(t *testing.T) {
	var roamedTicket string

	mux := http.NewServeMux()
	mux.HandleFunc(
		"/do/off/ui/auth/login/post/bb5df85216504820be7bba2b0ae1535b/0",
		func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			require.Equal(t, "2020012345", r.PostForm.Get("i_user"))
			require.Equal(t, "hunter2", r.PostForm.Get("i_pass"))
			require.Equal(t, "true", r.PostForm.Get("atOnce"))
			fmt.Fprint(w, `<a href="https://learn.example.edu/b/j_spring_security_thauth_roaming_entry?ticket=ABC123">redirect</a>`)
		},
	)
	mux.HandleFunc(
		"/b/j_spring_security_thauth_roaming_entry",
		func(w http.ResponseWriter, r *http.Request) {
			roamedTicket = r.URL.Query().Get("ticket")
			http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "session-1"})
		},
	)

	client, _ := newTestClient(t, mux)
	err := client.Login(context.Background(), "2020012345", "hunter2")
	require.NoError(t, err)
	require.Equal(t, "ABC123", roamedTicket)
}

func TestLoginWithoutTicketMarker(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>bad credentials</html>`)
	})

	client, _ := newTestClient(t, mux)
	err := client.Login(context.Background(), "user", "wrong")
	require.ErrorIs(t, err, ErrTicketNotFound)
}

func TestLoginWithUnterminatedTicket(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `ticket=ABC123 with no closing quote`)
	})

	client, _ := newTestClient(t, mux)
	err := client.Login(context.Background(), "user", "pass")
	require.ErrorIs(t, err, ErrTicketNotFound)
}

func TestSemesterIdList(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(
		"/b/wlxt/kc/v_wlkc_xs_xktjb_coassb/queryxnxq",
		func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `["2022-2023-3",null,"2023-2024-1"]`)
		},
	)

	client, _ := newTestClient(t, mux)
	ids, err := client.SemesterIdList(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"2022-2023-3", "2023-2024-1"}, ids)
}

type capturedDumps struct {
	mu       sync.Mutex
	contents []string
}

func (c *capturedDumps) Write(id string, contents string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.contents = append(c.contents, contents)
}

// the cli registers a dump output before building the client and runs
// with debug logging on, so bodyless requests must survive that path
func TestInstrumentedClientHandlesBodylessRequests(t *testing.T) {
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))
	t.Cleanup(func() { slog.SetDefault(previous) })

	dumps := &capturedDumps{}
	SetRestyInstrumentOutput(dumps)
	t.Cleanup(func() { SetRestyInstrumentOutput(nil) })

	mux := http.NewServeMux()
	mux.HandleFunc(
		"/b/wlxt/kc/v_wlkc_xs_xktjb_coassb/queryxnxq",
		func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `["2023-2024-1"]`)
		},
	)

	client, _ := newTestClient(t, mux)
	ids, err := client.SemesterIdList(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"2023-2024-1"}, ids)

	require.Len(t, dumps.contents, 1)
	require.Contains(t, dumps.contents[0], "queryxnxq")
}

func TestCourseListAttachesTimeLocation(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(
		"/b/wlxt/kc/v_wlkc_xs_xkb_kcb_extend/student/loadCourseBySemesterId/",
		func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"resultList":[
				{"wlkcid":"c1","kcm":"编译原理","ywkcm":"Compilers","jsm":"Zhang","jsh":"100","kch":"30240233","kxh":1},
				{"wlkcid":"c2","kcm":"操作系统","ywkcm":"Operating Systems","jsm":"Li","jsh":"200","kch":"30240243","kxh":2}
			]}`)
		},
	)
	mux.HandleFunc(
		"/b/kc/v_wlkc_xk_sjddb/detail",
		func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `["Mon 08:00 Room %s"]`, r.URL.Query().Get("id"))
		},
	)

	client, _ := newTestClient(t, mux)
	courses, err := client.CourseList(context.Background(), "2023-2024-1")
	require.NoError(t, err)
	require.Len(t, courses, 2)
	require.Equal(t, []string{"Mon 08:00 Room c1"}, courses[0].TimeLocation)
	require.Equal(t, []string{"Mon 08:00 Room c2"}, courses[1].TimeLocation)
}

func TestNotificationListScrapesDeclaredAttachmentsOnly(t *testing.T) {
	var detailHits int

	mux := http.NewServeMux()
	mux.HandleFunc(
		"/b/wlxt/kcgg/wlkc_ggb/student/pageListXsByxh",
		func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"object":{"aaData":[
				{"wlkcid":"c1","ggid":"n1","bt":"with attachment","sfyd":"是","sfqd":"1","fbsjStr":"2023-03-01 08:00","fbrxm":"Zhang","fjmc":"notes.zip"},
				{"wlkcid":"c1","ggid":"n2","bt":"plain","sfyd":"否","sfqd":"0","fbsjStr":"2023-03-02 09:00","fbrxm":"Zhang"}
			]}}`)
		},
	)
	mux.HandleFunc(
		"/f/wlxt/kcgg/wlkc_ggb/student/beforeViewXs",
		func(w http.ResponseWriter, r *http.Request) {
			detailHits++
			require.Equal(t, "n1", r.URL.Query().Get("id"))
			fmt.Fprint(w, `<a href="/b/wlxt/kcgg/download?id=n1" class="ml-10">notes.zip</a>`)
		},
	)

	client, server := newTestClient(t, mux)
	notifications, err := client.NotificationList(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, notifications, 2)
	require.Equal(t, 1, detailHits)
	require.Equal(t, server.URL+"/b/wlxt/kcgg/download?id=n1", notifications[0].AttachmentUrl)
	require.Equal(t, "", notifications[1].AttachmentUrl)
}

const testHomeworkDetail = `
<div class="list calendar clearfix">
  <div class="fl right"><div class="c55">do the reading</div></div>
</div>`

func homeworkItem(id string) string {
	return fmt.Sprintf(
		`{"wlkcid":"c1","zyid":"%s","xszyid":"s%s","bt":"%s","kssjStr":"2023-03-01 08:00","jzsjStr":"2023-03-08 23:59"}`,
		id, id, id,
	)
}

func TestHomeworkListPreservesEndpointOrder(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(
		"/b/wlxt/kczy/zy/student/zyListWj",
		func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{"object":{"aaData":[%s,%s]}}`, homeworkItem("A"), homeworkItem("B"))
		},
	)
	mux.HandleFunc(
		"/b/wlxt/kczy/zy/student/zyListYjwg",
		func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{"object":{"aaData":[%s]}}`, homeworkItem("C"))
		},
	)
	mux.HandleFunc(
		"/b/wlxt/kczy/zy/student/zyListYpg",
		func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{"object":{"aaData":[%s,%s]}}`, homeworkItem("D"), homeworkItem("E"))
		},
	)
	mux.HandleFunc(
		"/f/wlxt/kczy/zy/student/viewCj",
		func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, testHomeworkDetail)
		},
	)

	client, _ := newTestClient(t, mux)
	homework, err := client.HomeworkList(context.Background(), "c1")
	require.NoError(t, err)

	ids := make([]string, len(homework))
	for i, hw := range homework {
		ids[i] = hw.Id
		require.Equal(t, "do the reading", hw.Detail.Description)
	}
	require.Equal(t, []string{"A", "B", "C", "D", "E"}, ids)
}

func TestSubmitHomeworkSuccessMarker(t *testing.T) {
	response := "success"

	mux := http.NewServeMux()
	mux.HandleFunc(
		"/b/wlxt/kczy/zy/student/tjzy",
		func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseMultipartForm(1<<20))
			require.Equal(t, "my answer", r.PostFormValue("zynr"))
			require.Equal(t, "sh1", r.PostFormValue("xszyid"))
			require.Equal(t, "0", r.PostFormValue("isDeleted"))
			require.Equal(t, "undefined", r.PostFormValue("fileupload"))
			fmt.Fprint(w, response)
		},
	)

	client, _ := newTestClient(t, mux)
	err := client.SubmitHomework(context.Background(), SubmitHomeworkRequest{
		StudentHomeworkId: "sh1",
		Content:           "my answer",
	})
	require.NoError(t, err)

	response = "failed"
	err = client.SubmitHomework(context.Background(), SubmitHomeworkRequest{
		StudentHomeworkId: "sh1",
		Content:           "my answer",
	})
	var domainErr DomainError
	require.ErrorAs(t, err, &domainErr)
}

func TestReplyDiscussionRespondentFields(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(
		"/b/wlxt/bbs/bbs_tltb/student/addTlhf",
		func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseMultipartForm(1<<20))
			require.Equal(t, "c1", r.PostFormValue("wlkcid"))
			require.Equal(t, "d1", r.PostFormValue("tltid"))
			require.Equal(t, "I agree", r.PostFormValue("nr"))
			require.Equal(t, "r9", r.PostFormValue("fhhid"))
			require.Equal(t, "r9", r.PostFormValue("_fhhid"))
			fmt.Fprint(w, "success")
		},
	)

	client, _ := newTestClient(t, mux)
	err := client.ReplyDiscussion(context.Background(), ReplyDiscussionRequest{
		CourseId:          "c1",
		DiscussionId:      "d1",
		Content:           "I agree",
		RespondentReplyId: "r9",
	})
	require.NoError(t, err)
}

func TestDeleteDiscussionReplyTimeoutImpliesSuccess(t *testing.T) {
	if testing.Short() {
		t.Skip("waits out the deletion timeout")
	}

	mux := http.NewServeMux()
	mux.HandleFunc(
		"/f/wlxt/bbs/bbs_tltb/student/deleteHfById",
		func(w http.ResponseWriter, r *http.Request) {
			// the real server hangs up instead of answering
			time.Sleep(deleteReplyTimeout + time.Second)
		},
	)

	client, _ := newTestClient(t, mux)
	err := client.DeleteDiscussionReply(context.Background(), "c1", "r1")
	require.NoError(t, err)
}

func TestDeleteDiscussionReplyHardFailure(t *testing.T) {
	mux := http.NewServeMux()
	client, server := newTestClient(t, mux)
	// connection refused is a real failure, not the timeout quirk
	server.Close()

	err := client.DeleteDiscussionReply(context.Background(), "c1", "r1")
	require.Error(t, err)
}
