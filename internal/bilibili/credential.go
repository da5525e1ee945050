package bilibili

import (
	"net/http"
	"net/url"
	"strings"
)

// Credential carries the browser cookies of a logged-in session.
type Credential struct {
	SESSDATA    string
	BiliJct     string
	Buvid3      string
	DedeUserID  string
	ACTimeValue string
}

// Cookies returns the request cookies for the session. SESSDATA copied from
// a browser is already escaped; raw values are escaped here.
func (c Credential) Cookies() []*http.Cookie {
	sessdata := c.SESSDATA
	if sessdata != "" && !strings.Contains(sessdata, "%") {
		sessdata = url.QueryEscape(sessdata)
	}

	cookies := []*http.Cookie{
		{Name: "SESSDATA", Value: sessdata},
		{Name: "buvid3", Value: c.Buvid3},
		{Name: "bili_jct", Value: c.BiliJct},
		{Name: "ac_time_value", Value: c.ACTimeValue},
	}
	if c.DedeUserID != "" {
		cookies = append(cookies, &http.Cookie{Name: "DedeUserID", Value: c.DedeUserID})
	}
	return cookies
}

func (c Credential) empty() bool {
	return c.SESSDATA == "" && c.BiliJct == "" && c.Buvid3 == "" &&
		c.DedeUserID == "" && c.ACTimeValue == ""
}
