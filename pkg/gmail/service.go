package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	"motelaudit-backend/internal/report/domain"
	"motelaudit-backend/pkg/whitelist"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Conservative retry limits for per-message and per-attachment fetches.
const (
	msgRetries         = 2
	attachRetries      = 2
	maxAttachmentBytes = 12 * 1024 * 1024 // 12MB cap
	listPageSize       = 100
)

// Coarse provider-level filter; a stricter local check runs per message.
const baseQuery = "(subject:daily OR subject:report)"

var subjectKeywords = []string{"daily report", "daily reports", "daily", "report"}

var emailAddrRe = regexp.MustCompile(`<([^>]+)>\s*$`)

// Service reads candidate report messages from Gmail. Only messages whose
// subject passes the local keyword check and whose sender is whitelisted are
// returned; everything else is silently skipped.
type Service struct {
	config    *oauth2.Config
	tokenPath string
	whitelist *whitelist.Service
}

func NewService(clientID, clientSecret, tokenPath string, wl *whitelist.Service) *Service {
	return &Service{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{gmail.GmailReadonlyScope},
		},
		tokenPath: tokenPath,
		whitelist: wl,
	}
}

// persistingTokenSource writes refreshed tokens back to the token file so
// the stored credential stays usable across runs.
type persistingTokenSource struct {
	src       oauth2.TokenSource
	current   *oauth2.Token
	tokenPath string
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	t, err := s.src.Token()
	if err != nil {
		// A dead refresh token needs interactive re-authorization;
		// drop the stored credential so the operator re-acquires one.
		log.Printf("[Gmail] Token refresh failed, removing %s: %v", s.tokenPath, err)
		_ = os.Remove(s.tokenPath)
		return nil, err
	}
	if s.current.AccessToken != t.AccessToken {
		s.current = t
		if data, err := json.Marshal(t); err == nil {
			if err := os.WriteFile(s.tokenPath, data, 0600); err != nil {
				log.Printf("[Gmail] Failed to persist refreshed token: %v", err)
			}
		}
	}
	return t, nil
}

func (s *Service) gmailService(ctx context.Context) (*gmail.Service, error) {
	data, err := os.ReadFile(s.tokenPath)
	if err != nil {
		return nil, fmt.Errorf("gmail token not found at %s (run authorization first): %w", s.tokenPath, err)
	}

	token := &oauth2.Token{}
	if err := json.Unmarshal(data, token); err != nil {
		return nil, fmt.Errorf("invalid gmail token file: %w", err)
	}

	source := &persistingTokenSource{
		src:       s.config.TokenSource(ctx, token),
		current:   token,
		tokenPath: s.tokenPath,
	}

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, source)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %w", err)
	}
	return srv, nil
}

// DateRangeQuery builds the optional provider-side date narrowing clause.
// Dates use the provider's YYYY/MM/DD form.
func DateRangeQuery(after, before string) string {
	var parts []string
	if after != "" {
		parts = append(parts, "after:"+after)
	}
	if before != "" {
		parts = append(parts, "before:"+before)
	}
	return strings.Join(parts, " ")
}

// FetchRecent retrieves a bounded batch of eligible messages from a single
// listing page. Returns the accepted messages and the number of candidates
// scanned.
func (s *Service) FetchRecent(ctx context.Context, limit int, query string) ([]*domain.InboundEmail, int, error) {
	srv, err := s.gmailService(ctx)
	if err != nil {
		return nil, 0, err
	}

	ids := s.listMessageIDs(srv, query, 1)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	emails := make([]*domain.InboundEmail, 0, len(ids))
	for _, id := range ids {
		if e := s.fetchOne(srv, id); e != nil {
			emails = append(emails, e)
		}
		if limit > 0 && len(emails) >= limit {
			break
		}
	}
	return emails, len(ids), nil
}

// FetchAll sweeps the mailbox page by page, bounded by maxPages when
// positive. The query string narrows the provider-side search (date ranges).
func (s *Service) FetchAll(ctx context.Context, maxPages int, query string) ([]*domain.InboundEmail, int, error) {
	srv, err := s.gmailService(ctx)
	if err != nil {
		return nil, 0, err
	}

	ids := s.listMessageIDs(srv, query, maxPages)

	emails := make([]*domain.InboundEmail, 0, len(ids))
	for _, id := range ids {
		if e := s.fetchOne(srv, id); e != nil {
			emails = append(emails, e)
		}
	}
	return emails, len(ids), nil
}

// listMessageIDs pages through the provider listing. Listing errors end the
// sweep with whatever was collected so far; the run degrades, it does not
// abort.
func (s *Service) listMessageIDs(srv *gmail.Service, query string, maxPages int) []string {
	q := baseQuery
	if query != "" {
		q = strings.TrimSpace(baseQuery + " " + query)
	}

	var ids []string
	pageToken := ""
	pageCount := 0

	for {
		call := srv.Users.Messages.List("me").Q(q).MaxResults(listPageSize)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			log.Printf("[Gmail] List error: %v", err)
			break
		}

		for _, m := range resp.Messages {
			ids = append(ids, m.Id)
		}
		pageToken = resp.NextPageToken
		pageCount++

		if pageToken == "" || (maxPages > 0 && pageCount >= maxPages) {
			break
		}
	}
	return ids
}

// fetchOne retrieves one message and applies the local subject and sender
// checks. Returns nil for skipped or unfetchable messages.
func (s *Service) fetchOne(srv *gmail.Service, msgID string) *domain.InboundEmail {
	msg := getMessageWithRetries(srv, msgID)
	if msg == nil {
		return nil
	}

	email := toInboundEmail(msg)

	if !subjectIsDailyReport(email.Subject) {
		return nil
	}
	if !s.whitelist.IsTrusted(extractEmailAddress(email.From)) {
		return nil
	}

	email.Attachments = s.collectAttachments(srv, msgID, msg.Payload)
	log.Printf("[Gmail] %q: %d supported attachment(s)", email.Subject, len(email.Attachments))
	return email
}

func getMessageWithRetries(srv *gmail.Service, msgID string) *gmail.Message {
	for i := 0; i < msgRetries; i++ {
		msg, err := srv.Users.Messages.Get("me", msgID).Format("full").Do()
		if err == nil {
			return msg
		}
		log.Printf("[Gmail] Get %s failed (attempt %d/%d): %v", msgID, i+1, msgRetries, err)
		time.Sleep(600 * time.Millisecond * time.Duration(i+1))
	}
	return nil
}

// collectAttachments walks the multipart tree and downloads every supported
// document part. Oversized attachments are dropped, never truncated.
func (s *Service) collectAttachments(srv *gmail.Service, msgID string, payload *gmail.MessagePart) []domain.InboundAttachment {
	var attachments []domain.InboundAttachment
	for _, ref := range walkAttachmentParts(payload) {
		data := getAttachmentWithRetries(srv, msgID, ref.attachmentID)
		if data == nil {
			continue
		}
		attachments = append(attachments, domain.InboundAttachment{
			Filename: ref.filename,
			MimeType: ref.mimeType,
			Data:     data,
		})
	}
	return attachments
}

func getAttachmentWithRetries(srv *gmail.Service, msgID, attachmentID string) []byte {
	for i := 0; i < attachRetries; i++ {
		att, err := srv.Users.Messages.Attachments.Get("me", msgID, attachmentID).Do()
		if err != nil {
			log.Printf("[Gmail] Attachment %s/%s failed (attempt %d/%d): %v", msgID, attachmentID, i+1, attachRetries, err)
			time.Sleep(800 * time.Millisecond * time.Duration(i+1))
			continue
		}
		if att.Data == "" {
			return nil
		}
		return decodeAttachment(att.Data, msgID, attachmentID)
	}
	return nil
}

// decodeAttachment decodes the provider's base64url payload and enforces
// the size cap. Oversized attachments are dropped whole, never truncated.
func decodeAttachment(encoded, msgID, attachmentID string) []byte {
	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		log.Printf("[Gmail] Attachment %s/%s decode failed: %v", msgID, attachmentID, err)
		return nil
	}
	if len(raw) > maxAttachmentBytes {
		log.Printf("[Gmail] Attachment too large (%d bytes) on message %s, skipping", len(raw), msgID)
		return nil
	}
	return raw
}

// Helper functions

type attachmentRef struct {
	filename     string
	mimeType     string
	attachmentID string
}

// walkAttachmentParts traverses the part tree with an explicit stack so
// adversarial nesting cannot blow the call stack. Children are pushed in
// reverse to preserve document order.
func walkAttachmentParts(payload *gmail.MessagePart) []attachmentRef {
	var refs []attachmentRef
	if payload == nil {
		return refs
	}

	stack := []*gmail.MessagePart{payload}
	for len(stack) > 0 {
		part := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if part == nil {
			continue
		}

		if part.Filename != "" && part.Body != nil && part.Body.AttachmentId != "" &&
			isSupportedDocument(part.Filename, part.MimeType) {
			refs = append(refs, attachmentRef{
				filename:     part.Filename,
				mimeType:     part.MimeType,
				attachmentID: part.Body.AttachmentId,
			})
		}

		for i := len(part.Parts) - 1; i >= 0; i-- {
			stack = append(stack, part.Parts[i])
		}
	}
	return refs
}

func isSupportedDocument(filename, mimeType string) bool {
	fn := strings.ToLower(filename)
	mt := strings.ToLower(mimeType)
	return strings.HasSuffix(fn, ".pdf") || strings.Contains(mt, "pdf") ||
		strings.HasSuffix(fn, ".docx") || strings.Contains(mt, "officedocument.wordprocessingml")
}

func subjectIsDailyReport(subject string) bool {
	if subject == "" {
		return false
	}
	subj := strings.ToLower(subject)
	for _, kw := range subjectKeywords {
		if strings.Contains(subj, kw) {
			return true
		}
	}
	return false
}

// extractEmailAddress pulls the bare address out of a From header for strict
// whitelist matching.
func extractEmailAddress(from string) string {
	if from == "" {
		return ""
	}
	if m := emailAddrRe.FindStringSubmatch(from); m != nil {
		return strings.ToLower(strings.TrimSpace(m[1]))
	}
	return strings.ToLower(strings.TrimSpace(from))
}

func toInboundEmail(msg *gmail.Message) *domain.InboundEmail {
	var headers []*gmail.MessagePartHeader
	if msg.Payload != nil {
		headers = msg.Payload.Headers
	}

	return &domain.InboundEmail{
		MessageID:       msg.Id,
		ThreadID:        msg.ThreadId,
		InternalDate:    time.Unix(msg.InternalDate/1000, 0),
		Subject:         getHeader(headers, "Subject"),
		From:            getHeader(headers, "From"),
		To:              getHeader(headers, "To"),
		DateHeader:      getHeader(headers, "Date"),
		MessageIDHeader: getHeader(headers, "Message-ID"),
		Snippet:         msg.Snippet,
	}
}

func getHeader(headers []*gmail.MessagePartHeader, name string) string {
	for _, header := range headers {
		if header.Name == name {
			return header.Value
		}
	}
	return ""
}
