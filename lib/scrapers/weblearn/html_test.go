package weblearn

import (
	"testing"
	"thuassist-backend/lib/timezone"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const homeworkDetailPage = `
<div class="list calendar clearfix">
  <div class="fl right">
    <div class="c55">Prove the pumping lemma for regular languages.</div>
  </div>
</div>
<div class="list fujian clearfix">
  <div class="ftitle">
    <a href="/b/wlxt/kczy/zy/student/downloadFile/x?downloadUrl=XYZ">name.pdf<span class="color999">(1.2M)</span></a>
  </div>
</div>
<div class="list fujian clearfix">
  <div class="ftitle">no anchor in here</div>
</div>
<div class="list fujian clearfix">
  <div class="ftitle">
    <a href="/b/wlxt/kczy/zy/student/downloadFile/x?downloadUrl=GRADE">feedback.pdf</a>
  </div>
</div>`

func TestHomeworkDetailAttachments(t *testing.T) {
	detail, err := parseHomeworkDetail("https://learn.example.edu", []byte(homeworkDetailPage))
	require.NoError(t, err)

	require.Equal(t, "Prove the pumping lemma for regular languages.", detail.Description)

	require.NotNil(t, detail.Attachment)
	require.Equal(t, "name.pdf", detail.Attachment.Name)
	require.Equal(t, "https://learn.example.edu"+"XYZ", detail.Attachment.DownloadUrl)

	// second block has no usable anchor: absent, not an error
	require.Nil(t, detail.SubmitAttachment)

	require.NotNil(t, detail.GradeAttachment)
	require.Equal(t, "feedback.pdf", detail.GradeAttachment.Name)
	require.Equal(t, "https://learn.example.edu"+"GRADE", detail.GradeAttachment.DownloadUrl)
}

func TestHomeworkDetailMissingAttachmentBlocksEntirely(t *testing.T) {
	page := `
<div class="list calendar clearfix">
  <div class="fl right"><div class="c55">desc</div></div>
</div>`
	detail, err := parseHomeworkDetail("https://learn.example.edu", []byte(page))
	require.NoError(t, err)
	require.Nil(t, detail.Attachment)
	require.Nil(t, detail.SubmitAttachment)
	require.Nil(t, detail.GradeAttachment)
}

func TestHomeworkDetailRequiresDescription(t *testing.T) {
	_, err := parseHomeworkDetail("https://learn.example.edu", []byte(`<div class="boxbox"></div>`))
	var parseErr ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestNotificationAttachmentLink(t *testing.T) {
	page := `<div><a href="/b/wlxt/kcgg/detail?id=1" class="ml-10">附件.zip</a></div>`
	link, err := parseNotificationAttachment("https://learn.example.edu", []byte(page))
	require.NoError(t, err)
	require.Equal(t, "https://learn.example.edu/b/wlxt/kcgg/detail?id=1", link)

	_, err = parseNotificationAttachment("https://learn.example.edu", []byte(`<div></div>`))
	var parseErr ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, "a.ml-10", parseErr.Structure)
}

const repliesPage = `
<div class="replylist">
  <div class="reply">
    <span class="name">Li Lei</span>
    <span class="time">2023-03-01 08:00:00</span>
    <div class="content"><p>opening post</p></div>
    <div class="subreply" data-id="456">
      <span class="name">Han Meimei</span>
      <span class="time">2023-03-01 09:30:00</span>
      <div class="content"><p>sub reply</p></div>
    </div>
  </div>
  <div class="reply" data-id="123">
    <span class="name">Zhang San</span>
    <span class="time">2023-03-02 10:00:00</span>
    <div class="content"><p>second reply</p></div>
  </div>
</div>`

func TestDiscussionReplyTree(t *testing.T) {
	replies, err := parseDiscussionReplies([]byte(repliesPage))
	require.NoError(t, err)

	want := []DiscussionReply{
		{
			// the opening post has no identifier
			Id:          "",
			Author:      "Li Lei",
			PublishTime: time.Date(2023, 3, 1, 8, 0, 0, 0, timezone.Location),
			Content:     "<p>opening post</p>",
			Replies: []DiscussionReply{
				{
					Id:          "456",
					Author:      "Han Meimei",
					PublishTime: time.Date(2023, 3, 1, 9, 30, 0, 0, timezone.Location),
					Content:     "<p>sub reply</p>",
				},
			},
		},
		{
			Id:          "123",
			Author:      "Zhang San",
			PublishTime: time.Date(2023, 3, 2, 10, 0, 0, 0, timezone.Location),
			Content:     "<p>second reply</p>",
		},
	}
	if diff := cmp.Diff(want, replies); diff != "" {
		t.Fatalf("reply tree mismatch (-want +got):\n%s", diff)
	}
}

func TestEmptyReplyListIsNotAnError(t *testing.T) {
	replies, err := parseDiscussionReplies([]byte(`<div class="replylist"></div>`))
	require.NoError(t, err)
	require.Empty(t, replies)
}

func TestMissingReplyContainerIsParseError(t *testing.T) {
	_, err := parseDiscussionReplies([]byte(`<div class="somethingelse"></div>`))
	var parseErr ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, "div.replylist", parseErr.Structure)
}
