package weblearn

import "fmt"

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

const (
	DefaultLearnUrl = "https://learn.tsinghua.edu.cn"
	DefaultAuthUrl  = "https://id.tsinghua.edu.cn"
)

// endpoints is the resource-name to url table, resolved once when the
// client is constructed. ids are opaque, they are only ever pasted
// into these templates.
type endpoints struct {
	// course platform, also the prefix scraped download links get
	learn string
	// the id/sso server the ticket comes from
	auth string
}

func (e endpoints) login() string {
	return e.auth + "/do/off/ui/auth/login/post/bb5df85216504820be7bba2b0ae1535b/0?/login.do"
}

func (e endpoints) authRoam(ticket string) string {
	return e.learn + "/b/j_spring_security_thauth_roaming_entry?ticket=" + ticket
}

func (e endpoints) logout() string {
	return e.learn + "/f/j_spring_security_logout"
}

func (e endpoints) semesterIdList() string {
	return e.learn + "/b/wlxt/kc/v_wlkc_xs_xktjb_coassb/queryxnxq"
}

func (e endpoints) courseList(semester string) string {
	return e.learn + "/b/wlxt/kc/v_wlkc_xs_xkb_kcb_extend/student/loadCourseBySemesterId/" + semester
}

func (e endpoints) courseTimeLocation(course string) string {
	return e.learn + "/b/kc/v_wlkc_xk_sjddb/detail?id=" + course
}

func (e endpoints) courseHomepage(course string) string {
	return e.learn + "/f/wlxt/index/course/student/course?wlkcid=" + course
}

func (e endpoints) notificationList(course string) string {
	return e.learn + "/b/wlxt/kcgg/wlkc_ggb/student/pageListXsByxh?wlkcid=" + course + "&size=0"
}

func (e endpoints) notificationDetail(notification, course string) string {
	return e.learn + "/f/wlxt/kcgg/wlkc_ggb/student/beforeViewXs?wlkcid=" + course + "&id=" + notification
}

func (e endpoints) fileList(course string) string {
	return e.learn + "/b/wlxt/kj/wlkc_kjxxb/student/kjxxbByWlkcidAndSizeForStudent?wlkcid=" + course + "&size=0"
}

func (e endpoints) fileDownload(file string) string {
	return e.learn + "/b/wlxt/kj/wlkc_kjxxb/student/downloadFile?sfgk=0&wjid=" + file
}

// the three homework list variants, strictly in the order the portal
// presents them: not submitted, submitted but ungraded, graded
func (e endpoints) homeworkListUnsubmitted(course string) string {
	return e.learn + "/b/wlxt/kczy/zy/student/zyListWj?wlkcid=" + course + "&size=0"
}

func (e endpoints) homeworkListUngraded(course string) string {
	return e.learn + "/b/wlxt/kczy/zy/student/zyListYjwg?wlkcid=" + course + "&size=0"
}

func (e endpoints) homeworkListGraded(course string) string {
	return e.learn + "/b/wlxt/kczy/zy/student/zyListYpg?wlkcid=" + course + "&size=0"
}

func (e endpoints) homeworkDetail(course, homework, studentHomework string) string {
	return fmt.Sprintf(
		"%s/f/wlxt/kczy/zy/student/viewCj?wlkcid=%s&zyid=%s&xszyid=%s",
		e.learn, course, homework, studentHomework,
	)
}

func (e endpoints) homeworkSubmitPage(course, studentHomework string) string {
	return fmt.Sprintf(
		"%s/f/wlxt/kczy/zy/student/tijiao?wlkcid=%s&xszyid=%s",
		e.learn, course, studentHomework,
	)
}

func (e endpoints) homeworkSubmit() string {
	return e.learn + "/b/wlxt/kczy/zy/student/tjzy"
}

func (e endpoints) discussionList(course string) string {
	return e.learn + "/b/wlxt/bbs/bbs_tltb/student/kctlList?wlkcid=" + course + "&size=0"
}

func (e endpoints) questionList(course string) string {
	return e.learn + "/b/wlxt/bbs/bbs_tltb/student/kcwdList?wlkcid=" + course + "&size=0"
}

func (e endpoints) discussionReplies(course, discussion, board string) string {
	return fmt.Sprintf(
		"%s/f/wlxt/bbs/bbs_tltb/student/viewTlById?wlkcid=%s&id=%s&tabbh=2&bqid=%s",
		e.learn, course, discussion, board,
	)
}

func (e endpoints) replyDiscussion() string {
	return e.learn + "/b/wlxt/bbs/bbs_tltb/student/addTlhf"
}

func (e endpoints) deleteDiscussionReply(course, reply string) string {
	return fmt.Sprintf(
		"%s/f/wlxt/bbs/bbs_tltb/student/deleteHfById?wlkcid=%s&id=%s",
		e.learn, course, reply,
	)
}
