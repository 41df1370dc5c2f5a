package chart

import (
	"BikeDashboard/src/processor"
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/patrickmn/go-cache"
)

// Renderer 渲染图表并按 key 缓存 SVG。数据重新加载后调用 Flush 释放旧条目
type Renderer struct {
	cache *cache.Cache
}

// NewRenderer ttl<=0 时不缓存
func NewRenderer(ttl time.Duration) *Renderer {
	if ttl <= 0 {
		return &Renderer{}
	}
	return &Renderer{cache: cache.New(ttl, 2*ttl)}
}

// Key 数据版本 + 页面 + 日期范围 + 图表序号。
// 带上版本号，重新加载前开始的请求写入的旧图表不会被新数据的请求命中
func Key(gen uint64, page processor.Page, dr processor.DateRange, section, index int) string {
	return fmt.Sprintf("v%d|%s|%s|%d.%d", gen, page, dr, section, index)
}

// SVG 返回可直接嵌入页面的 SVG
func (r *Renderer) SVG(key string, spec processor.ChartSpec) (template.HTML, error) {
	if r.cache != nil {
		if v, ok := r.cache.Get(key); ok {
			return v.(template.HTML), nil
		}
	}

	var buf bytes.Buffer
	if err := Render(spec, &buf); err != nil {
		return "", err
	}
	svg := template.HTML(buf.String())

	if r.cache != nil {
		r.cache.Set(key, svg, cache.DefaultExpiration)
	}
	return svg, nil
}

// Flush 清空缓存
func (r *Renderer) Flush() {
	if r.cache != nil {
		r.cache.Flush()
	}
}

// Len 当前缓存条目数
func (r *Renderer) Len() int {
	if r.cache == nil {
		return 0
	}
	return r.cache.ItemCount()
}
