package inbox

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"golang.org/x/net/html"
)

// Message is the part of an email the classifier needs.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

var headerDecoder = new(mime.WordDecoder)

// Parse reads an RFC 5322 message. The body is the first text/plain part,
// or the text of the first text/html part when no plain part exists.
func Parse(r io.Reader) (Message, error) {
	m, err := mail.ReadMessage(r)
	if err != nil {
		return Message{}, fmt.Errorf("inbox: read message: %w", err)
	}
	out := Message{
		From:    decodeHeader(m.Header.Get("From")),
		To:      decodeHeader(m.Header.Get("To")),
		Subject: decodeHeader(m.Header.Get("Subject")),
	}

	plain, htmlText, err := readPart(m.Header.Get("Content-Type"), m.Header.Get("Content-Transfer-Encoding"), m.Body)
	if err != nil {
		return Message{}, err
	}
	if strings.TrimSpace(plain) != "" {
		out.Body = strings.TrimSpace(plain)
	} else {
		out.Body = htmlText
	}
	return out, nil
}

func decodeHeader(v string) string {
	d, err := headerDecoder.DecodeHeader(v)
	if err != nil {
		return v
	}
	return d
}

// readPart walks a MIME entity and returns its first plain and html texts.
func readPart(contentType, encoding string, body io.Reader) (plain, htmlText string, err error) {
	mediaType, params, perr := mime.ParseMediaType(contentType)
	if perr != nil || contentType == "" {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		mr := multipart.NewReader(body, params["boundary"])
		for {
			p, err := mr.NextPart()
			if err == io.EOF {
				return plain, htmlText, nil
			}
			if err != nil {
				return "", "", fmt.Errorf("inbox: read part: %w", err)
			}
			pl, ht, err := readPart(p.Header.Get("Content-Type"), p.Header.Get("Content-Transfer-Encoding"), p)
			if err != nil {
				return "", "", err
			}
			if plain == "" {
				plain = pl
			}
			if htmlText == "" {
				htmlText = ht
			}
		}
	}

	data, err := io.ReadAll(decodeTransfer(encoding, body))
	if err != nil {
		return "", "", fmt.Errorf("inbox: read body: %w", err)
	}
	switch mediaType {
	case "text/plain":
		return string(data), "", nil
	case "text/html":
		text, err := HTMLText(bytes.NewReader(data))
		if err != nil {
			return "", "", err
		}
		return "", text, nil
	}
	return "", "", nil
}

func decodeTransfer(encoding string, r io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, &lineStripper{r: r})
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	}
	return r
}

// lineStripper drops CR and LF so base64 bodies wrapped at 76 columns decode.
type lineStripper struct {
	r io.Reader
}

func (l *lineStripper) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	j := 0
	for _, b := range p[:n] {
		if b != '\r' && b != '\n' {
			p[j] = b
			j++
		}
	}
	return j, err
}

// HTMLText returns the visible text of an HTML document. Block elements and
// <br> start a new line; script and style content is dropped.
func HTMLText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("inbox: parse html: %w", err)
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "head":
				return
			case "br", "p", "div", "li", "tr", "h1", "h2", "h3", "h4", "h5", "h6":
				sb.WriteByte('\n')
			}
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	var lines []string
	for line := range strings.Lines(sb.String()) {
		if f := strings.Join(strings.Fields(line), " "); f != "" {
			lines = append(lines, f)
		}
	}
	return strings.Join(lines, "\n"), nil
}
