package shell

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hpungsan/panelist/internal/catalog"
	"github.com/hpungsan/panelist/internal/errors"
	"github.com/hpungsan/panelist/internal/persona"
)

// selectTopic shows the topic menu. The last two entries lead to the template
// and custom-question flows.
func (s *Shell) selectTopic() (string, []string, error) {
	topics := catalog.Topics()
	templateChoice := len(topics) + 1
	customChoice := len(topics) + 2

	s.println(s.style.heading("\n=== Select Research Topic ==="))
	for i, t := range topics {
		s.printf("%d. %s\n", i+1, t.Name)
	}
	s.printf("%d. Question Templates\n", templateChoice)
	s.printf("%d. Custom Questions\n", customChoice)

	label := fmt.Sprintf("\nEnter your choice (1-%d): ", customChoice)
	choice, err := ask(s, label, func(line string) (int, error) {
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > customChoice {
			return 0, errors.NewInvalidSelection(fmt.Sprintf("Invalid choice. Please select 1-%d.", customChoice))
		}
		return n, nil
	})
	if err != nil {
		return "", nil, err
	}

	switch choice {
	case templateChoice:
		q, err := s.selectTemplate()
		return catalog.TemplateTopic, q, err
	case customChoice:
		q, err := s.customQuestions()
		return catalog.CustomTopic, q, err
	}
	t := topics[choice-1]
	return t.Name, t.Questions, nil
}

// selectTemplate shows the template menu. The extra "skip" entry falls
// through to custom questions.
func (s *Shell) selectTemplate() ([]string, error) {
	templates := catalog.Templates()
	skip := len(templates) + 1

	s.println(s.style.heading("\n=== Available Question Templates ==="))
	for i, t := range templates {
		s.printf("%d. %s (%d questions)\n", i+1, catalog.TemplateTitle(t.Key), len(t.Questions))
	}
	s.printf("%d. Skip template selection\n", skip)

	label := fmt.Sprintf("\nSelect template (1-%d): ", skip)
	choice, err := ask(s, label, func(line string) (int, error) {
		n, err := strconv.Atoi(line)
		if err != nil {
			return 0, errors.NewInvalidSelection("Please enter a valid number.")
		}
		if n < 1 || n > skip {
			return 0, errors.NewInvalidSelection(fmt.Sprintf("Please enter a number between 1 and %d", skip))
		}
		return n, nil
	})
	if err != nil {
		return nil, err
	}
	if choice == skip {
		return s.customQuestions()
	}
	return templates[choice-1].Questions, nil
}

// customQuestions reads questions until an empty line, requiring at least one
// and stopping at catalog.MaxCustomQuestions.
func (s *Shell) customQuestions() ([]string, error) {
	var questions []string
	s.println(s.style.heading("\n=== Create Custom Questions ==="))
	s.println("Enter your questions one by one (press Enter on empty line to finish):")

	for {
		q, err := s.readLine(fmt.Sprintf("Question %d: ", len(questions)+1))
		if err != nil {
			return nil, err
		}
		if q == "" {
			if len(questions) == 0 {
				s.println(s.style.err("Please enter at least one question."))
				continue
			}
			break
		}
		questions = append(questions, q)
		if len(questions) >= catalog.MaxCustomQuestions {
			s.printf("Maximum %d questions reached.\n", catalog.MaxCustomQuestions)
			break
		}
	}

	s.println(s.style.success(fmt.Sprintf("\n%d questions created successfully!", len(questions))))
	return questions, nil
}

func (s *Shell) listQuestions(questions []string) {
	for i, q := range questions {
		s.printf("%2d. %s\n", i+1, q)
	}
}

// reviewQuestions lists the questions and asks whether to edit them.
func (s *Shell) reviewQuestions(questions []string) (bool, error) {
	s.println(s.style.heading(fmt.Sprintf("\n=== Review Questions (%d total) ===", len(questions))))
	s.listQuestions(questions)
	return ask(s, "\nWould you like to edit these questions? (y/n): ", parseYesNo)
}

// editAction is one parsed editor command.
type editAction struct {
	op    byte // 'e', 'a', 'd', 'r' or 'f'
	index int  // zero-based, for 'e' and 'd'
}

// parseEditAction parses "e N", "a", "d N", "r" or "f" against n questions.
func parseEditAction(line string, n int) (editAction, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return editAction{}, errors.NewInvalidSelection("Invalid action.")
	}

	switch fields[0] {
	case "f", "a", "r":
		if len(fields) != 1 {
			return editAction{}, errors.NewInvalidSelection("Invalid action.")
		}
		return editAction{op: fields[0][0]}, nil
	case "e", "d":
		if len(fields) != 2 {
			return editAction{}, errors.NewInvalidSelection(fmt.Sprintf("Invalid format. Use '%s [number]'", fields[0]))
		}
		num, err := strconv.Atoi(fields[1])
		if err != nil {
			return editAction{}, errors.NewInvalidSelection(fmt.Sprintf("Invalid format. Use '%s [number]'", fields[0]))
		}
		if num < 1 || num > n {
			return editAction{}, errors.NewInvalidSelection("Invalid question number.")
		}
		return editAction{op: fields[0][0], index: num - 1}, nil
	}
	return editAction{}, errors.NewInvalidSelection("Invalid action.")
}

// editQuestions runs the editor loop until 'f'. The returned slice is a new
// slice; the input is not modified.
func (s *Shell) editQuestions(questions []string) ([]string, error) {
	questions = append([]string(nil), questions...)

	for {
		s.println(s.style.heading(fmt.Sprintf("\n=== Edit Questions (%d total) ===", len(questions))))
		s.listQuestions(questions)
		s.println("\nOptions:")
		s.println("e [number] - Edit question")
		s.println("a - Add new question")
		s.println("d [number] - Delete question")
		s.println("r - Reorder questions")
		s.println("f - Finished editing")

		act, err := ask(s, "\nChoose action: ", func(line string) (editAction, error) {
			return parseEditAction(line, len(questions))
		})
		if err != nil {
			return nil, err
		}

		switch act.op {
		case 'f':
			return questions, nil
		case 'a':
			if len(questions) >= catalog.MaxCustomQuestions {
				s.printf("Maximum %d questions reached.\n", catalog.MaxCustomQuestions)
				continue
			}
			q, err := s.readLine("Enter new question: ")
			if err != nil {
				return nil, err
			}
			if q != "" {
				questions = append(questions, q)
				s.println(s.style.success("Question added!"))
			}
		case 'e':
			s.printf("Current: %s\n", questions[act.index])
			q, err := s.readLine("Enter new text: ")
			if err != nil {
				return nil, err
			}
			if q != "" {
				questions[act.index] = q
				s.println(s.style.success("Question updated!"))
			}
		case 'd':
			removed := questions[act.index]
			questions = append(questions[:act.index], questions[act.index+1:]...)
			s.printf("Deleted: %s\n", removed)
		case 'r':
			if questions, err = s.reorderQuestions(questions); err != nil {
				return nil, err
			}
		}
	}
}

// parseOrder parses a comma-separated 1-based permutation of n items.
func parseOrder(line string, n int) ([]int, error) {
	parts := strings.Split(line, ",")
	order := make([]int, 0, len(parts))
	for _, p := range parts {
		num, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, errors.NewInvalidSelection("Invalid format. Questions not reordered.")
		}
		order = append(order, num-1)
	}

	if len(order) != n {
		return nil, errors.NewInvalidSelection("Invalid order. Please use all question numbers exactly once.")
	}
	seen := make([]bool, n)
	for _, i := range order {
		if i < 0 || i >= n || seen[i] {
			return nil, errors.NewInvalidSelection("Invalid order. Please use all question numbers exactly once.")
		}
		seen[i] = true
	}
	return order, nil
}

// reorderQuestions reads one permutation. An invalid one leaves the order
// unchanged.
func (s *Shell) reorderQuestions(questions []string) ([]string, error) {
	s.println(s.style.heading("\n=== Reorder Questions ==="))
	s.println("Enter new order as comma-separated numbers (e.g., 3,1,4,2):")
	for i, q := range questions {
		s.printf("%d. %s\n", i+1, q)
	}

	line, err := s.readLine("\nNew order: ")
	if err != nil {
		return nil, err
	}
	order, err := parseOrder(line, len(questions))
	if err != nil {
		s.println(s.style.err(selectionMessage(err)))
		return questions, nil
	}

	reordered := make([]string, len(order))
	for i, from := range order {
		reordered[i] = questions[from]
	}
	s.println(s.style.success("Questions reordered successfully!"))
	return reordered, nil
}

// parsePersonaChoice maps menu input to persona IDs. all is the "All personas"
// entry. Duplicates in a list are dropped.
func parsePersonaChoice(line string, ids []string) ([]string, error) {
	all := len(ids) + 1
	usage := fmt.Sprintf(". Please enter valid choices (1-%d).", all)

	if line == strconv.Itoa(all) {
		return append([]string(nil), ids...), nil
	}

	var selected []string
	seen := map[string]bool{}
	for _, part := range strings.Split(line, ",") {
		part = strings.TrimSpace(part)
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 || n > len(ids) {
			return nil, errors.NewInvalidSelection(fmt.Sprintf("Error: Invalid choice: %s", part) + usage)
		}
		if id := ids[n-1]; !seen[id] {
			seen[id] = true
			selected = append(selected, id)
		}
	}
	return selected, nil
}

// selectPersonas shows the persona menu and returns the chosen IDs in order.
func (s *Shell) selectPersonas() ([]string, error) {
	profiles := s.registry.Profiles()
	ids := s.registry.IDs()

	s.println(s.style.heading("\n=== Select Personas to Interview ==="))
	for i, p := range profiles {
		s.printf("%d. %s - %s\n", i+1, persona.DisplayName(p.ID), p.Description)
	}
	s.printf("%d. All personas\n", len(ids)+1)

	label := fmt.Sprintf("\nEnter choice (1-%d, or comma-separated for multiple): ", len(ids)+1)
	return ask(s, label, func(line string) ([]string, error) {
		return parsePersonaChoice(line, ids)
	})
}
