// Package bible holds the 66-book canon used to validate chapter keys,
// compute completion rates and generate admin bulk updates.
package bible

import (
	"fmt"
	"strconv"
	"strings"
)

type Book struct {
	Name     string
	Abbrev   string
	Chapters int
}

var Books = []Book{
	{"창세기", "창", 50},
	{"출애굽기", "출", 40},
	{"레위기", "레", 27},
	{"민수기", "민", 36},
	{"신명기", "신", 34},
	{"여호수아", "수", 24},
	{"사사기", "삿", 21},
	{"룻기", "룻", 4},
	{"사무엘상", "삼상", 31},
	{"사무엘하", "삼하", 24},
	{"열왕기상", "왕상", 22},
	{"열왕기하", "왕하", 25},
	{"역대상", "대상", 29},
	{"역대하", "대하", 36},
	{"에스라", "스", 10},
	{"느헤미야", "느", 13},
	{"에스더", "에", 10},
	{"욥기", "욥", 42},
	{"시편", "시", 150},
	{"잠언", "잠", 31},
	{"전도서", "전", 12},
	{"아가", "아", 8},
	{"이사야", "사", 66},
	{"예레미야", "렘", 52},
	{"예레미야애가", "애", 5},
	{"에스겔", "겔", 48},
	{"다니엘", "단", 12},
	{"호세아", "호", 14},
	{"요엘", "욜", 3},
	{"아모스", "암", 9},
	{"오바댜", "옵", 1},
	{"요나", "욘", 4},
	{"미가", "미", 7},
	{"나훔", "나", 3},
	{"하박국", "합", 3},
	{"스바냐", "습", 3},
	{"학개", "학", 2},
	{"스가랴", "슥", 14},
	{"말라기", "말", 4},
	{"마태복음", "마", 28},
	{"마가복음", "막", 16},
	{"누가복음", "눅", 24},
	{"요한복음", "요", 21},
	{"사도행전", "행", 28},
	{"로마서", "롬", 16},
	{"고린도전서", "고전", 16},
	{"고린도후서", "고후", 13},
	{"갈라디아서", "갈", 6},
	{"에베소서", "엡", 6},
	{"빌립보서", "빌", 4},
	{"골로새서", "골", 4},
	{"데살로니가전서", "살전", 5},
	{"데살로니가후서", "살후", 3},
	{"디모데전서", "딤전", 6},
	{"디모데후서", "딤후", 4},
	{"디도서", "딛", 3},
	{"빌레몬서", "몬", 1},
	{"히브리서", "히", 13},
	{"야고보서", "약", 5},
	{"베드로전서", "벧전", 5},
	{"베드로후서", "벧후", 3},
	{"요한일서", "요일", 5},
	{"요한이서", "요이", 1},
	{"요한삼서", "요삼", 1},
	{"유다서", "유", 1},
	{"요한계시록", "계", 22},
}

// TotalChapters is the number of chapters across the whole canon.
var TotalChapters = func() int {
	n := 0
	for _, b := range Books {
		n += b.Chapters
	}
	return n
}()

// Lookup finds a book by full name or abbreviation.
func Lookup(name string) (Book, bool) {
	name = strings.TrimSpace(name)
	for _, b := range Books {
		if b.Name == name || b.Abbrev == name {
			return b, true
		}
	}
	return Book{}, false
}

// Position is the canon index of a book, or -1 when the name is unknown.
func Position(name string) int {
	name = strings.TrimSpace(name)
	for i, b := range Books {
		if b.Name == name || b.Abbrev == name {
			return i
		}
	}
	return -1
}

// ChapterRef addresses one chapter of a book.
type ChapterRef struct {
	Book    string
	Chapter int
}

func (r ChapterRef) Key() string {
	return ChapterKey(r.Book, r.Chapter)
}

func ChapterKey(book string, chapter int) string {
	return book + ":" + strconv.Itoa(chapter)
}

// ParseChapterKey splits "<book>:<chapter>". The book must be non-empty and
// the chapter an integer; anything else is rejected.
func ParseChapterKey(key string) (ChapterRef, bool) {
	i := strings.LastIndex(key, ":")
	if i <= 0 {
		return ChapterRef{}, false
	}
	book := strings.TrimSpace(key[:i])
	n, err := strconv.Atoi(strings.TrimSpace(key[i+1:]))
	if book == "" || err != nil {
		return ChapterRef{}, false
	}
	return ChapterRef{Book: book, Chapter: n}, true
}

// Less orders refs by canon position, then chapter. Unknown books sort last
// by name.
func Less(a, b ChapterRef) bool {
	pa, pb := Position(a.Book), Position(b.Book)
	if pa != pb {
		switch {
		case pa < 0:
			return false
		case pb < 0:
			return true
		}
		return pa < pb
	}
	if pa < 0 && a.Book != b.Book {
		return a.Book < b.Book
	}
	return a.Chapter < b.Chapter
}

// ChaptersThrough lists every chapter in canon order from Genesis 1 up to and
// including the target chapter.
func ChaptersThrough(bookName string, chapter int) ([]ChapterRef, error) {
	target, ok := Lookup(bookName)
	if !ok {
		return nil, fmt.Errorf("unknown book %q", bookName)
	}
	if chapter < 1 || chapter > target.Chapters {
		return nil, fmt.Errorf("invalid chapter %d for %s (1-%d)", chapter, target.Name, target.Chapters)
	}

	var refs []ChapterRef
	for _, b := range Books {
		last := b.Chapters
		if b.Name == target.Name {
			last = chapter
		}
		for ch := 1; ch <= last; ch++ {
			refs = append(refs, ChapterRef{Book: b.Name, Chapter: ch})
		}
		if b.Name == target.Name {
			break
		}
	}
	return refs, nil
}

// CompletionRate is the percentage of the canon covered by completed chapters.
func CompletionRate(completed int64) float64 {
	if TotalChapters == 0 {
		return 0
	}
	return float64(completed) / float64(TotalChapters) * 100
}
