package learnsync

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"thuassist-backend/lib/scrapers/weblearn"
	"thuassist-backend/lib/sqliteutil"
	"thuassist-backend/lib/telemetry"
	"thuassist-backend/services/learnsync/db"

	"github.com/stretchr/testify/require"
)

func fakePortal(t *testing.T) *httptest.Server {
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
			fmt.Fprint(w, `["Mon 08:00 Main Building 101"]`)
		},
	)
	mux.HandleFunc(
		"/b/wlxt/kcgg/wlkc_ggb/student/pageListXsByxh",
		func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"object":{"aaData":[
				{"wlkcid":"c1","ggid":"n1","bt":"first lecture","sfyd":"是","sfqd":"1","fbsjStr":"2023-09-11 08:00","fbrxm":"Zhang"}
			]}}`)
		},
	)
	mux.HandleFunc(
		"/b/wlxt/kj/wlkc_kjxxb/student/kjxxbByWlkcidAndSizeForStudent",
		func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"object":{"resultsList":[
				{"wjid":"f1","bt":"slides","ms":"week 1","wjdx":1048576,"fileSize":"1M","scsj":"2023-09-11 09:00","isNew":1,"sfqd":0,"llcs":3,"xzcs":2,"wjlx":"pdf"}
			]}}`)
		},
	)
	mux.HandleFunc(
		"/b/wlxt/kczy/zy/student/zyListWj",
		func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"object":{"aaData":[
				{"wlkcid":"c1","zyid":"h1","xszyid":"sh1","bt":"exercise 1","kssjStr":"2023-09-11 08:00","jzsjStr":"2023-09-18 23:59"}
			]}}`)
		},
	)
	mux.HandleFunc(
		"/b/wlxt/kczy/zy/student/zyListYjwg",
		func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"object":{"aaData":[]}}`)
		},
	)
	mux.HandleFunc(
		"/b/wlxt/kczy/zy/student/zyListYpg",
		func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"object":{"aaData":[]}}`)
		},
	)
	mux.HandleFunc(
		"/b/wlxt/bbs/bbs_tltb/student/kctlList",
		func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"object":{"resultsList":[
				{"id":"d1","bqid":"b1","bt":"week 1 questions","fbrxm":"Zhang","fbsj":"2023-09-12 10:00:00","zhhfrxm":"Li","zhhfsj":"2023-09-12 11:00:00","djs":5,"hfcs":2}
			]}}`)
		},
	)
	mux.HandleFunc(
		"/b/wlxt/bbs/bbs_tltb/student/kcwdList",
		func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"object":{"resultsList":[
				{"id":"q1","bqid":"b2","bt":"about grading","fbrxm":"Wang","fbsj":"2023-09-13 09:00:00","zhhfrxm":"","zhhfsj":"","djs":1,"hfcs":0,"wtnr":"is the curve absolute"}
			]}}`)
		},
	)
	mux.HandleFunc(
		"/f/wlxt/kczy/zy/student/viewCj",
		func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `<div class="list calendar clearfix">
				<div class="fl right"><div class="c55">read chapter 1</div></div>
			</div>`)
		},
	)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func setupService(t *testing.T) Service {
	cleanup := telemetry.SetupForTesting(t, "test:services/learnsync")
	t.Cleanup(cleanup)

	server := fakePortal(t)
	client, err := weblearn.NewClient(context.Background(), weblearn.ClientOptions{
		LearnUrl: server.URL,
		AuthUrl:  server.URL,
	})
	require.NoError(t, err)

	database, err := sqliteutil.OpenDB(db.Schema, filepath.Join(t.TempDir(), "learnsync.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	return NewService(database, client)
}

func TestSyncAndReadBack(t *testing.T) {
	service := setupService(t)
	ctx := context.Background()

	results, err := service.Sync(ctx, SyncRequest{
		SemesterId: "2023-2024-1",
		Courses:    []string{"compilers"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "c1", results[0].CourseId)
	require.Equal(t, 1, results[0].Notifications)
	require.Equal(t, 1, results[0].Files)
	require.Equal(t, 1, results[0].Homework)
	require.Equal(t, 1, results[0].Discussions)
	require.Equal(t, 1, results[0].Questions)

	courses, err := service.Courses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	require.Equal(t, "编译原理", courses[0].Name)
	require.Equal(t, "Mon 08:00 Main Building 101", courses[0].TimeLocation)

	content, err := service.CourseContent(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, content.Notifications, 1)
	require.Equal(t, "first lecture", content.Notifications[0].Title)
	require.True(t, content.Notifications[0].Read)
	require.Len(t, content.Files, 1)
	require.Equal(t, int64(1048576), content.Files[0].RawSize)
	require.Len(t, content.Homework, 1)
	require.Equal(t, "read chapter 1", content.Homework[0].Description)
	require.False(t, content.Homework[0].SubmitTime.Valid)
	require.False(t, content.Homework[0].Grade.Valid)

	require.Len(t, content.Discussions, 2)
	kinds := map[string]string{}
	for _, d := range content.Discussions {
		kinds[d.ID] = d.Kind
	}
	require.Equal(t, db.DiscussionKindDiscussion, kinds["d1"])
	require.Equal(t, db.DiscussionKindQuestion, kinds["q1"])
}

func TestResyncReplacesInsteadOfDuplicating(t *testing.T) {
	service := setupService(t)
	ctx := context.Background()

	req := SyncRequest{SemesterId: "2023-2024-1", Courses: []string{"编译原理"}}
	_, err := service.Sync(ctx, req)
	require.NoError(t, err)
	_, err = service.Sync(ctx, req)
	require.NoError(t, err)

	content, err := service.CourseContent(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, content.Notifications, 1)
	require.Len(t, content.Files, 1)
	require.Len(t, content.Homework, 1)
	require.Len(t, content.Discussions, 2)
}

func TestSyncUnknownCourse(t *testing.T) {
	service := setupService(t)

	_, err := service.Sync(context.Background(), SyncRequest{
		SemesterId: "2023-2024-1",
		Courses:    []string{"underwater basket weaving"},
	})
	require.Error(t, err)
}

func TestSelectCourses(t *testing.T) {
	available := []weblearn.Course{
		{Id: "c1", Name: "编译原理", EnglishName: "Compilers"},
		{Id: "c2", Name: "操作系统", EnglishName: "Operating Systems"},
	}

	all, err := selectCourses(available, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)

	selected, err := selectCourses(available, []string{"operating  systems"})
	require.NoError(t, err)
	require.Len(t, selected, 1)
	require.Equal(t, "c2", selected[0].Id)

	// the same course matched twice only comes back once
	selected, err = selectCourses(available, []string{"Compilers", "编译原理"})
	require.NoError(t, err)
	require.Len(t, selected, 1)
	require.Equal(t, "c1", selected[0].Id)

	_, err = selectCourses(available, []string{"zzzzz"})
	require.Error(t, err)
}
