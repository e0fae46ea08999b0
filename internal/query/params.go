package query

import (
	"net/url"
	"strconv"
	"strings"
)

// Params 列表请求参数
//
// 对应的查询字符串：search、sort（前缀 - 为降序）、page、per_page（或 page_size）、
// filter[name]=value、date_from、date_to（YYYY-MM-DD）、scope=all。
type Params struct {
	Search   string
	Filters  map[string]string
	Sort     string
	Page     int
	PerPage  int
	DateFrom string
	DateTo   string
	All      bool
}

// ParamsFromValues 从URL查询参数解析列表参数，无法解析的值按未提供处理
func ParamsFromValues(v url.Values) Params {
	p := Params{
		Search:   strings.TrimSpace(v.Get("search")),
		Sort:     strings.TrimSpace(v.Get("sort")),
		DateFrom: strings.TrimSpace(v.Get("date_from")),
		DateTo:   strings.TrimSpace(v.Get("date_to")),
		All:      v.Get("scope") == "all",
		Filters:  map[string]string{},
	}
	p.Page, _ = strconv.Atoi(v.Get("page"))
	perPage := v.Get("per_page")
	if perPage == "" {
		perPage = v.Get("page_size")
	}
	p.PerPage, _ = strconv.Atoi(perPage)

	for key, values := range v {
		if len(values) == 0 || !strings.HasPrefix(key, "filter[") || !strings.HasSuffix(key, "]") {
			continue
		}
		name := strings.TrimSpace(key[len("filter[") : len(key)-1])
		if value := strings.TrimSpace(values[0]); name != "" && value != "" {
			p.Filters[name] = value
		}
	}
	return p
}

// WithFilter 返回增加了一个过滤条件的副本
func (p Params) WithFilter(name, value string) Params {
	filters := make(map[string]string, len(p.Filters)+1)
	for k, v := range p.Filters {
		filters[k] = v
	}
	filters[name] = value
	p.Filters = filters
	return p
}
