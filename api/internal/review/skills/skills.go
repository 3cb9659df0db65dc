package skills

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"resume-review/api/internal/review"
	"resume-review/api/internal/util"
)

// DefaultVocabulary is the fixed skill list resumes and job descriptions are matched against.
var DefaultVocabulary = []string{
	"Python", "Java", "SQL", "JavaScript", "C++", "Project Management", "Machine Learning",
	"Data Analysis", "Communication", "Leadership", "Teamwork", "Problem Solving", "Time Management",
	"Adaptability", "Creativity", "Work Ethic", "Attention to Detail", "Interpersonal Skills",
	"Customer Service", "Sales", "Marketing", "Financial Analysis", "Accounting", "Budgeting",
	"Programming", "Web Development", "Software Engineering", "Database Management", "Networking",
	"Cloud Computing", "Artificial Intelligence", "Research", "Data Mining", "Big Data", "Data Visualization",
}

// orgMarkers close a capitalised span that names an organisation or product.
var orgMarkers = map[string]bool{
	"inc": true, "corp": true, "corporation": true, "llc": true, "ltd": true, "gmbh": true,
	"company": true, "group": true, "bank": true, "labs": true, "university": true,
	"college": true, "institute": true, "technologies": true, "systems": true,
	"solutions": true, "software": true, "studio": true, "studios": true, "agency": true,
	"foundation": true, "platform": true, "project": true, "consulting": true,
}

var (
	reToken   = regexp.MustCompile(`[\p{L}\p{N}+#]+`)
	reWord2   = regexp.MustCompile(`\b\w\w+\b`)
	reCapSpan = regexp.MustCompile(`\p{Lu}[\p{L}\p{N}&.-]*(?:[ \t]+\p{Lu}[\p{L}\p{N}&.-]*)+`)
)

type Reviewer struct {
	Vocabulary []string
}

func New() *Reviewer { return &Reviewer{Vocabulary: DefaultVocabulary} }

func (r *Reviewer) Name() string { return "skills" }

// Accepts plain text and PDFs with a text layer.
func (r *Reviewer) Accepts(mime string) bool { return util.IsText(mime) || util.IsPDF(mime) }

func (r *Reviewer) Review(ctx context.Context, doc review.Document) (review.Report, error) {
	if err := ctx.Err(); err != nil {
		return review.Report{}, err
	}
	if doc.MIME != "" && !r.Accepts(doc.MIME) {
		return review.Report{}, fmt.Errorf("%w: %s", review.ErrUnsupported, util.BaseMIME(doc.MIME))
	}
	text := string(doc.Data)
	if util.IsPDF(doc.MIME) {
		t, err := util.PDFText(doc.Data)
		if err != nil {
			return review.Report{}, fmt.Errorf("%w: %w", review.ErrUnreadable, err)
		}
		text = t
	}

	skills := r.MatchSkills(text)
	experience := ExtractExperience(text, r.Vocabulary)
	rep := review.Report{
		Skills:      skills,
		Experience:  experience,
		Suggestions: Suggestions(skills, experience),
	}

	var lines []string
	if jd := strings.TrimSpace(doc.JobDescription); jd != "" {
		score := ATSScore(text, jd)
		rep.ATSScore = &score
		rep.RequiredSkills = r.MatchSkills(jd)
		lines = append(lines, fmt.Sprintf("ATS Score: %.2f", score))
	}
	lines = append(lines,
		fmt.Sprintf("Identified Skills (%d): %s", len(skills), strings.Join(skills, ", ")),
		fmt.Sprintf("Identified Experience (%d): %s", len(experience), strings.Join(experience, ", ")),
	)
	if rep.RequiredSkills != nil {
		lines = append(lines, fmt.Sprintf("Required Skills (%d): %s", len(rep.RequiredSkills), strings.Join(rep.RequiredSkills, ", ")))
		if missing := difference(rep.RequiredSkills, skills); len(missing) > 0 {
			lines = append(lines, "Missing Skills: "+strings.Join(missing, ", "))
		}
	}
	lines = append(lines, "Suggestions:")
	for _, s := range rep.Suggestions {
		lines = append(lines, "- "+s)
	}
	rep.DetailedReview = strings.Join(lines, "\n")
	return rep, nil
}

// MatchSkills returns vocabulary entries found in text as whole words, case-insensitively,
// in vocabulary order.
func (r *Reviewer) MatchSkills(text string) []string {
	hay := " " + strings.Join(tokens(text), " ") + " "
	out := []string{}
	for _, skill := range r.Vocabulary {
		needle := " " + strings.Join(tokens(skill), " ") + " "
		if strings.TrimSpace(needle) != "" && strings.Contains(hay, needle) {
			out = append(out, skill)
		}
	}
	return out
}

func tokens(s string) []string {
	all := reToken.FindAllString(strings.ToLower(s), -1)
	out := all[:0]
	for _, t := range all {
		// одиночные "+" / "#" словами не считаем
		if strings.Trim(t, "+#") != "" {
			out = append(out, t)
		}
	}
	return out
}

// ExtractExperience finds capitalised spans that end in an organisation marker
// ("Acme Corp", "Stanford University"). Spans equal to a vocabulary skill are skipped.
// Result is sorted and de-duplicated.
func ExtractExperience(text string, vocabulary []string) []string {
	skip := map[string]bool{}
	for _, v := range vocabulary {
		skip[strings.ToLower(v)] = true
	}
	seen := map[string]bool{}
	out := []string{}
	for _, line := range strings.Split(text, "\n") {
		for _, span := range reCapSpan.FindAllString(line, -1) {
			for _, words := range splitAtStops(strings.Fields(span)) {
				if len(words) < 2 {
					continue
				}
				last := strings.ToLower(strings.TrimRight(words[len(words)-1], ".-"))
				if !orgMarkers[last] {
					continue
				}
				name := strings.TrimRight(strings.Join(words, " "), ".-")
				key := strings.ToLower(name)
				if skip[key] || seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, name)
			}
		}
	}
	sort.Strings(out)
	return out
}

// splitAtStops cuts a span after every word ending in '.', so "Initech Inc. Python"
// gives ["Initech" "Inc."] and ["Python"].
func splitAtStops(words []string) [][]string {
	var out [][]string
	start := 0
	for i, w := range words {
		if strings.HasSuffix(w, ".") {
			out = append(out, words[start:i+1])
			start = i + 1
		}
	}
	if start < len(words) {
		out = append(out, words[start:])
	}
	return out
}

// ATSScore is the cosine similarity of term-count vectors (lower-cased words of two or
// more characters), scaled to 0..100.
func ATSScore(resume, jobDescription string) float64 {
	a, b := termCounts(resume), termCounts(jobDescription)
	var dot, na, nb float64
	for t, ca := range a {
		na += ca * ca
		if cb, ok := b[t]; ok {
			dot += ca * cb
		}
	}
	for _, cb := range b {
		nb += cb * cb
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)) * 100
}

func termCounts(s string) map[string]float64 {
	m := map[string]float64{}
	for _, w := range reWord2.FindAllString(strings.ToLower(s), -1) {
		m[w]++
	}
	return m
}

// Suggestions follows the fixed advice rules on how many skills and experience entries were found.
func Suggestions(skills, experience []string) []string {
	var out []string
	if len(skills) == 0 {
		out = append(out, "Consider adding more relevant skills to your resume that align with the job description.")
	} else {
		out = append(out, "Skills matched with job description: "+strings.Join(skills, ", "))
	}
	if len(experience) == 0 {
		out = append(out, "Consider adding more detailed descriptions of your work experience, including specific projects and achievements.")
	} else {
		out = append(out, "Experience listed in resume: "+strings.Join(experience, ", "))
	}
	if len(skills) < 3 {
		out = append(out, "Add more specific skills that match the job description.")
	}
	if len(experience) < 2 {
		out = append(out, "Provide more details about your work experience, including specific projects and achievements.")
	}
	if len(skills) < 3 || len(experience) < 2 {
		out = append(out, "Review the job description and ensure your resume highlights the skills and experiences that are most relevant to the position.")
	}
	return out
}

func difference(a, b []string) []string {
	in := map[string]bool{}
	for _, s := range b {
		in[s] = true
	}
	var out []string
	for _, s := range a {
		if !in[s] {
			out = append(out, s)
		}
	}
	return out
}
