package service

import (
	"sort"
	"strings"
)

// genreIDs TMDB 类型名到类型 ID 的固定映射
var genreIDs = map[string]int{
	"action":      28,
	"adventure":   12,
	"comedy":      35,
	"drama":       18,
	"fantasy":     14,
	"horror":      27,
	"mystery":     9648,
	"romance":     10749,
	"sci-fi":      878,
	"thriller":    53,
	"animation":   16,
	"documentary": 99,
}

// LookupGenre 按名称查找类型 ID，忽略大小写
func LookupGenre(name string) (int, bool) {
	id, ok := genreIDs[strings.ToLower(name)]
	return id, ok
}

// GenreNames 所有支持的类型名，按字母排序
func GenreNames() []string {
	names := make([]string, 0, len(genreIDs))
	for name := range genreIDs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
