package database

import (
	"codepath_backend/internal/gamification"
	"codepath_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type seedTopic struct {
	Subject     string
	Slug        string
	Title       string
	Emoji       string
	Order       int
	Difficulty  gamification.Difficulty
	Description string
}

var seedSubjects = []model.Subject{
	{Slug: "python", Name: "Python", Description: "Master Python from fundamentals to OOP.", Icon: "Code", Color: "#EAB308", Order: 1},
	{Slug: "javascript", Name: "JavaScript", Description: "Learn JavaScript: variables, functions, DOM, async.", Icon: "FileCode", Color: "#F59E0B", Order: 2},
	{Slug: "html-css", Name: "HTML / CSS", Description: "Build web pages with HTML and CSS.", Icon: "Globe", Color: "#F97316", Order: 3},
	{Slug: "sql", Name: "SQL", Description: "Query databases with SQL.", Icon: "Database", Color: "#3B82F6", Order: 4},
	{Slug: "git", Name: "Git", Description: "Version control with Git.", Icon: "GitBranch", Color: "#EF4444", Order: 5},
}

var seedTopics = []seedTopic{
	{"python", "data-types", "Data Types", "🔢", 1, gamification.Beginner, "int, float, str, bool, None, bytes"},
	{"python", "collections", "Collections", "📋", 2, gamification.Beginner, "list, tuple, set, dict, range"},
	{"python", "operators", "Operators", "+", 3, gamification.Beginner, "Arithmetic, comparison, logical, bitwise"},
	{"python", "conditions", "Conditions", "🔀", 4, gamification.Beginner, "if/elif/else, ternary, match/case"},
	{"python", "loops", "Loops", "🔄", 5, gamification.Beginner, "for, while, break, continue"},
	{"python", "built-in-functions", "Built-in Functions", "🛠️", 6, gamification.Beginner, "print, len, range, sorted, enumerate"},
	{"python", "user-defined-functions", "User-defined Functions", "✨", 7, gamification.Beginner, "def, parameters, return, *args, **kwargs"},
	{"python", "lambda-functions", "Lambda Functions", "⚡", 8, gamification.Intermediate, "Anonymous one-line functions"},
	{"python", "recursive-functions", "Recursive Functions", "🔄", 9, gamification.Intermediate, "Functions that call themselves"},
	{"python", "higher-order-functions", "Higher-Order Functions", "🎯", 10, gamification.Intermediate, "map, filter, reduce, decorators"},
	{"python", "generator-functions", "Generator Functions", "🔋", 11, gamification.Intermediate, "yield, lazy sequences"},
	{"python", "closures", "Closures", "🔐", 12, gamification.Advanced, "Inner functions with captured state"},
	{"python", "classes", "Classes & Instances", "🏗️", 13, gamification.Intermediate, "class, __init__, self"},
	{"python", "inheritance", "Inheritance", "🧬", 14, gamification.Intermediate, "super(), MRO, ABCs"},
	{"python", "magic-methods", "Magic Methods", "✨", 15, gamification.Advanced, "__str__, __eq__, __len__"},
	{"python", "dataclasses", "Dataclasses", "📦", 16, gamification.Advanced, "@dataclass, frozen, fields"},

	{"javascript", "variables", "Variables & Types", "📦", 1, gamification.Beginner, "let, const, var, primitives"},
	{"javascript", "functions", "Functions", "⚡", 2, gamification.Beginner, "Declaration, expressions, arrow"},
	{"javascript", "arrays-objects", "Arrays & Objects", "📋", 3, gamification.Beginner, "Array methods, object destructuring"},
	{"javascript", "control-flow", "Control Flow", "🔀", 4, gamification.Beginner, "if/else, switch, loops"},
	{"javascript", "dom", "DOM Manipulation", "🌐", 5, gamification.Intermediate, "querySelector, events, attributes"},
	{"javascript", "events", "Events", "🎯", 6, gamification.Intermediate, "addEventListener, delegation, bubbling"},
	{"javascript", "promises", "Promises", "🤝", 7, gamification.Intermediate, "then, catch, Promise.all"},
	{"javascript", "async-await", "Async/Await", "⏱️", 8, gamification.Advanced, "async functions, error handling"},
	{"javascript", "es6-features", "ES6+ Features", "🚀", 9, gamification.Intermediate, "Destructuring, spread, template literals"},
	{"javascript", "modules", "Modules", "📦", 10, gamification.Intermediate, "import, export, dynamic import"},

	{"html-css", "elements", "Elements & Structure", "🏗️", 1, gamification.Beginner, "Tags, attributes, semantic HTML"},
	{"html-css", "forms", "Forms & Inputs", "📝", 2, gamification.Beginner, "input, select, textarea, validation"},
	{"html-css", "semantic", "Semantic HTML", "🏷️", 3, gamification.Beginner, "header, nav, main, article, section"},
	{"html-css", "selectors", "CSS Selectors", "🎨", 4, gamification.Beginner, "Class, ID, pseudo-classes, combinators"},
	{"html-css", "box-model", "Box Model", "📦", 5, gamification.Beginner, "margin, padding, border, sizing"},
	{"html-css", "flexbox", "Flexbox", "📐", 6, gamification.Intermediate, "Flex container, items, alignment"},
	{"html-css", "grid", "CSS Grid", "🔲", 7, gamification.Intermediate, "Grid template, areas, responsive"},
	{"html-css", "responsive", "Responsive Design", "📱", 8, gamification.Intermediate, "Media queries, mobile-first, units"},

	{"sql", "select", "SELECT Queries", "🔍", 1, gamification.Beginner, "SELECT, FROM, LIMIT, ORDER BY"},
	{"sql", "where", "WHERE & Filtering", "🎯", 2, gamification.Beginner, "WHERE, AND, OR, IN, BETWEEN, LIKE"},
	{"sql", "joins", "JOINs", "🔗", 3, gamification.Intermediate, "INNER, LEFT, RIGHT, FULL, CROSS"},
	{"sql", "aggregation", "Aggregation", "📊", 4, gamification.Intermediate, "GROUP BY, HAVING, COUNT, SUM, AVG"},
	{"sql", "subqueries", "Subqueries", "📦", 5, gamification.Advanced, "Nested queries, EXISTS, ANY, ALL"},
	{"sql", "indexes", "Indexes & Performance", "⚡", 6, gamification.Advanced, "CREATE INDEX, EXPLAIN, optimization"},

	{"git", "init-commits", "Init & Commits", "📝", 1, gamification.Beginner, "git init, add, commit, status, log"},
	{"git", "branching", "Branching", "🌿", 2, gamification.Beginner, "branch, checkout, switch"},
	{"git", "merging", "Merging", "🔀", 3, gamification.Intermediate, "merge, conflicts, fast-forward"},
	{"git", "rebasing", "Rebasing", "📏", 4, gamification.Advanced, "rebase, interactive, squash"},
	{"git", "workflows", "Workflows", "🔄", 5, gamification.Advanced, "Git flow, trunk-based, PRs"},
}

type seedBadge struct {
	model.Badge
	Criterion gamification.Criterion
}

var seedBadges = []seedBadge{
	{model.Badge{Slug: "first-lesson", Name: "First Step", Description: "Complete your first lesson", Icon: "🎯", Category: "milestone", XPBonus: 10}, gamification.LessonsCompleted{Value: 1}},
	{model.Badge{Slug: "10-lessons", Name: "Getting Started", Description: "Complete 10 lessons", Icon: "📚", Category: "milestone", XPBonus: 25}, gamification.LessonsCompleted{Value: 10}},
	{model.Badge{Slug: "50-lessons", Name: "Scholar", Description: "Complete 50 lessons", Icon: "🎓", Category: "milestone", XPBonus: 100}, gamification.LessonsCompleted{Value: 50}},
	{model.Badge{Slug: "streak-7", Name: "Week Warrior", Description: "Maintain a 7-day streak", Icon: "🔥", Category: "streak", XPBonus: 50}, gamification.StreakAtLeast{Value: 7}},
	{model.Badge{Slug: "streak-14", Name: "Fortnight Focus", Description: "Maintain a 14-day streak", Icon: "🔥", Category: "streak", XPBonus: 100}, gamification.StreakAtLeast{Value: 14}},
	{model.Badge{Slug: "streak-30", Name: "Monthly Master", Description: "Maintain a 30-day streak", Icon: "🏆", Category: "streak", XPBonus: 200}, gamification.StreakAtLeast{Value: 30}},
	{model.Badge{Slug: "xp-1000", Name: "XP Hunter", Description: "Earn 1,000 total XP", Icon: "⚡", Category: "xp", XPBonus: 50}, gamification.XPAtLeast{Value: 1000}},
	{model.Badge{Slug: "xp-5000", Name: "XP Legend", Description: "Earn 5,000 total XP", Icon: "💎", Category: "xp", XPBonus: 200}, gamification.XPAtLeast{Value: 5000}},
	{model.Badge{Slug: "explorer", Name: "Explorer", Description: "Start 3 different subjects", Icon: "🗺️", Category: "milestone", XPBonus: 30}, gamification.SubjectsStarted{Value: 3}},
	{model.Badge{Slug: "polyglot", Name: "Polyglot", Description: "Start all 5 subjects", Icon: "🌟", Category: "milestone", XPBonus: 100}, gamification.SubjectsStarted{Value: 5}},
	{model.Badge{Slug: "python-10", Name: "Python Apprentice", Description: "Complete 10 Python lessons", Icon: "🐍", Category: "subject", XPBonus: 50}, gamification.SubjectLessons{Subject: "python", Value: 10}},
	{model.Badge{Slug: "js-10", Name: "JS Apprentice", Description: "Complete 10 JavaScript lessons", Icon: "🟨", Category: "subject", XPBonus: 50}, gamification.SubjectLessons{Subject: "javascript", Value: 10}},
}
// Seed 写入默认的科目、主题、课程与徽章，可重复执行
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		subjectIDs := make(map[string]uint, len(seedSubjects))
		for _, s := range seedSubjects {
			var sub model.Subject
			err := tx.Where(model.Subject{Slug: s.Slug}).
				Assign(model.Subject{Name: s.Name, Description: s.Description, Icon: s.Icon, Color: s.Color, Order: s.Order}).
				FirstOrCreate(&sub).Error
			if err != nil {
				return fmt.Errorf("seed subject %s: %w", s.Slug, err)
			}
			subjectIDs[s.Slug] = sub.ID
		}

		var prev *model.Topic
		for _, t := range seedTopics {
			if prev != nil && prev.SubjectID != subjectIDs[t.Subject] {
				prev = nil
			}
			// 非入门主题以同科目的上一个主题为前置
			var prereq *uint
			if prev != nil && t.Difficulty != gamification.Beginner {
				id := prev.ID
				prereq = &id
			}

			topic := model.Topic{}
			err := tx.Where(model.Topic{SubjectID: subjectIDs[t.Subject], Slug: t.Slug}).
				Assign(map[string]interface{}{
					"title":           t.Title,
					"emoji":           t.Emoji,
					"description":     t.Description,
					"sort_order":      t.Order,
					"difficulty":      t.Difficulty,
					"prerequisite_id": prereq,
				}).
				FirstOrCreate(&topic).Error
			if err != nil {
				return fmt.Errorf("seed topic %s/%s: %w", t.Subject, t.Slug, err)
			}

			lesson := model.Lesson{}
			err = tx.Where(model.Lesson{TopicID: topic.ID, Slug: "introduction"}).
				Attrs(model.Lesson{
					Title:      "Introduction to " + t.Title,
					Content:    t.Description,
					Order:      1,
					Difficulty: t.Difficulty,
				}).
				FirstOrCreate(&lesson).Error
			if err != nil {
				return fmt.Errorf("seed lesson %s/%s: %w", t.Subject, t.Slug, err)
			}
			prev = &topic
		}

		for _, b := range seedBadges {
			raw, err := gamification.MarshalCriterion(b.Criterion)
			if err != nil {
				return err
			}
			badge := b.Badge
			badge.Criteria = datatypes.JSON(raw)
			err = tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "slug"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "description", "icon", "category", "criteria", "xp_bonus"}),
			}).Create(&badge).Error
			if err != nil {
				return fmt.Errorf("seed badge %s: %w", b.Slug, err)
			}
		}

		log.Printf("Seeded %d subjects, %d topics, %d badges", len(seedSubjects), len(seedTopics), len(seedBadges))
		return nil
	})
}
