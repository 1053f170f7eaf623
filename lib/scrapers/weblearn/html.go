package weblearn

import (
	"bytes"
	"strings"
	"thuassist-backend/lib/htmlutil"
	"thuassist-backend/lib/timezone"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const downloadUrlMarker = "downloadUrl="

// parseHomeworkDetail scrapes a homework detail page. The description
// section is required; the three attachment blocks are consumed
// positionally (assignment, submission, grade) and each one is
// independently allowed to be absent.
func parseHomeworkDetail(prefix string, body []byte) (HomeworkDetail, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		return HomeworkDetail{}, err
	}

	sections := doc.Find("div.list.calendar.clearfix div.fl.right div.c55")
	if sections.Length() == 0 {
		return HomeworkDetail{}, ParseError{
			Structure: "div.list.calendar.clearfix div.fl.right div.c55",
		}
	}

	detail := HomeworkDetail{}
	detail.Description, _ = sections.Eq(0).Html()
	if sections.Length() > 1 {
		detail.Answer, _ = sections.Eq(1).Html()
	}
	if submitted := doc.Find("div.boxbox div.right"); submitted.Length() > 0 {
		detail.Submission, _ = submitted.Eq(0).Html()
	}

	blocks := doc.Find("div.list.fujian.clearfix")
	detail.Attachment = attachmentFromBlock(prefix, blocks.Eq(0))
	detail.SubmitAttachment = attachmentFromBlock(prefix, blocks.Eq(1))
	detail.GradeAttachment = attachmentFromBlock(prefix, blocks.Eq(2))
	return detail, nil
}

// attachmentFromBlock pulls the (name, download url) pair out of one
// attachment container. A missing container, anchor or marker all
// yield nil: an absent attachment is an expected outcome, not an
// error.
func attachmentFromBlock(prefix string, block *goquery.Selection) *Attachment {
	if block.Length() == 0 {
		return nil
	}

	var out *Attachment
	block.Find(".ftitle a").EachWithBreak(func(_ int, anchor *goquery.Selection) bool {
		href := anchor.AttrOr("href", "")
		at := strings.Index(href, downloadUrlMarker)
		if at < 0 {
			return true
		}
		out = &Attachment{
			// the display name is the anchor's first text node, the
			// nested size tag must not leak in
			Name:        htmlutil.CleanText(htmlutil.FirstText(anchor.Nodes[0])),
			DownloadUrl: prefix + href[at+len(downloadUrlMarker):],
		}
		return false
	})
	return out
}

// parseNotificationAttachment extracts the single attachment link from
// a notification detail page. Callers only get here for notifications
// that declared an attachment name, so a missing anchor is a
// ParseError rather than an absence.
func parseNotificationAttachment(prefix string, body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}

	href := doc.Find("a.ml-10").First().AttrOr("href", "")
	if href == "" {
		return "", ParseError{Structure: "a.ml-10"}
	}
	return prefix + href, nil
}

// parseDiscussionReplies parses the two-level reply tree of a
// discussion page. A structurally absent container is a ParseError; a
// present but empty one is just zero replies.
func parseDiscussionReplies(body []byte) ([]DiscussionReply, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}

	container := doc.Find("div.replylist")
	if container.Length() == 0 {
		return nil, ParseError{Structure: "div.replylist"}
	}

	replies := []DiscussionReply{}
	container.Find("div.reply").EachWithBreak(func(_ int, block *goquery.Selection) bool {
		reply, replyErr := replyFromBlock(block)
		if replyErr != nil {
			err = replyErr
			return false
		}

		block.Find("div.subreply").EachWithBreak(func(_ int, sub *goquery.Selection) bool {
			subReply, subErr := replyFromBlock(sub)
			if subErr != nil {
				err = subErr
				return false
			}
			reply.Replies = append(reply.Replies, subReply)
			return true
		})
		if err != nil {
			return false
		}

		replies = append(replies, reply)
		return true
	})
	if err != nil {
		return nil, err
	}
	return replies, nil
}

// replyFromBlock reads one reply node; the opening post carries no
// data-id which is why Id stays optional.
func replyFromBlock(block *goquery.Selection) (DiscussionReply, error) {
	name := block.Find("span.name").First()
	if name.Length() == 0 {
		return DiscussionReply{}, ParseError{Structure: "div.reply span.name"}
	}
	timeText := strings.TrimSpace(block.Find("span.time").First().Text())
	publishTime, err := time.ParseInLocation(secondLayout, timeText, timezone.Location)
	if err != nil {
		return DiscussionReply{}, ParseError{Structure: "div.reply span.time"}
	}
	content := block.Find("div.content").First()
	if content.Length() == 0 {
		return DiscussionReply{}, ParseError{Structure: "div.reply div.content"}
	}
	html, _ := content.Html()

	return DiscussionReply{
		Id:          block.AttrOr("data-id", ""),
		Author:      htmlutil.CleanText(name.Text()),
		PublishTime: publishTime,
		Content:     html,
	}, nil
}
