// Package orderstatus renders the terminal pages a shopper lands on after checkout.
package orderstatus

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"
)

type View string

const (
	ViewOrderSuccess            View = "order-success"
	ViewOrderFailed             View = "order-failed"
	ViewOrderPending            View = "order-pending"
	ViewPaymentAlreadyProcessed View = "payment-already-processed"
	ViewPaymentFailed           View = "payment-failed"
)

const supportPlaceholder = "{{supportEmail}}"

//go:embed pages.yaml
var pagesYAML []byte

var views = []View{
	ViewOrderSuccess,
	ViewOrderFailed,
	ViewOrderPending,
	ViewPaymentAlreadyProcessed,
	ViewPaymentFailed,
}

// Resolve maps a route segment or query value to a view. Unknown values land on
// order-failed.
func Resolve(param string) View {
	v := View(strings.ToLower(strings.TrimSpace(param)))
	for _, known := range views {
		if v == known {
			return v
		}
	}
	return ViewOrderFailed
}

type Action struct {
	Label string `yaml:"label" json:"label"`
	Href  string `yaml:"href" json:"href"`
	Kind  string `yaml:"kind" json:"kind"`
}

// Page is a rendered status page.
type Page struct {
	View     View          `json:"view"`
	Title    string        `json:"title"`
	Tone     string        `json:"tone"`
	BodyHTML template.HTML `json:"bodyHtml"`
	Message  string        `json:"message,omitempty"`
	OrderID  string        `json:"orderId,omitempty"`
	Actions  []Action      `json:"actions"`
}

type pageCopy struct {
	Title   string   `yaml:"title"`
	Tone    string   `yaml:"tone"`
	Body    string   `yaml:"body"`
	Actions []Action `yaml:"actions"`
}

// Catalog holds the pre-rendered copy for every view.
type Catalog struct {
	pages  map[View]Page
	policy *bluemonday.Policy
}

func NewCatalog(supportEmail string) (*Catalog, error) {
	return parseCatalog(pagesYAML, supportEmail)
}

func parseCatalog(raw []byte, supportEmail string) (*Catalog, error) {
	var doc map[string]pageCopy
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse status pages: %w", err)
	}

	md := goldmark.New()
	pages := make(map[View]Page, len(views))
	for _, v := range views {
		c, ok := doc[string(v)]
		if !ok {
			return nil, fmt.Errorf("status page %q missing", v)
		}
		var buf bytes.Buffer
		if err := md.Convert([]byte(c.Body), &buf); err != nil {
			return nil, fmt.Errorf("render status page %q: %w", v, err)
		}
		actions := make([]Action, 0, len(c.Actions))
		for _, a := range c.Actions {
			if strings.Contains(a.Href, supportPlaceholder) {
				if strings.TrimSpace(supportEmail) == "" {
					continue
				}
				a.Href = strings.ReplaceAll(a.Href, supportPlaceholder, strings.TrimSpace(supportEmail))
			}
			actions = append(actions, a)
		}
		pages[v] = Page{
			View:     v,
			Title:    strings.TrimSpace(c.Title),
			Tone:     c.Tone,
			BodyHTML: template.HTML(buf.String()),
			Actions:  actions,
		}
	}
	return &Catalog{pages: pages, policy: bluemonday.StrictPolicy()}, nil
}

// Render returns the page for a view. message is optional backend text and is stripped
// of markup before display.
func (c *Catalog) Render(v View, orderID, message string) Page {
	page, ok := c.pages[v]
	if !ok {
		page = c.pages[ViewOrderFailed]
	}
	page.Actions = append([]Action(nil), page.Actions...)
	page.OrderID = strings.TrimSpace(orderID)
	page.Message = strings.TrimSpace(c.policy.Sanitize(message))
	return page
}
