package wizard

const (
	StepCruise    = "cruise"
	StepExcursion = "excursion"
	StepPayment   = "payment"
)

// Step binds a step name to its accepted fields and template.
type Step struct {
	Name     string
	Template string
	Fields   []string
}

// Registry is the ordered list of wizard steps.
type Registry struct {
	steps []Step
}

func NewRegistry(steps ...Step) *Registry {
	return &Registry{steps: steps}
}

func DefaultRegistry() *Registry {
	return NewRegistry(
		Step{
			Name:     StepCruise,
			Template: "booking/cruise.html",
			Fields:   []string{"cruises", "excursion_type", "date"},
		},
		Step{
			Name:     StepExcursion,
			Template: "booking/excursion.html",
			Fields:   []string{"excursion", "adults", "kids"},
		},
		Step{
			Name:     StepPayment,
			Template: "booking/payment.html",
			Fields: []string{
				"cards", "card_holder_name", "card_number", "expiration_month",
				"expiration_year", "card_code", "agrees",
			},
		},
	)
}

func (r *Registry) Names() []string {
	names := make([]string, len(r.steps))
	for i, step := range r.steps {
		names[i] = step.Name
	}
	return names
}

// Index returns the position of the step, or -1.
func (r *Registry) Index(name string) int {
	for i, step := range r.steps {
		if step.Name == name {
			return i
		}
	}
	return -1
}

func (r *Registry) Has(name string) bool {
	return r.Index(name) >= 0
}

func (r *Registry) First() string {
	if len(r.steps) == 0 {
		return ""
	}
	return r.steps[0].Name
}

func (r *Registry) Last() string {
	if len(r.steps) == 0 {
		return ""
	}
	return r.steps[len(r.steps)-1].Name
}

func (r *Registry) Next(name string) (string, bool) {
	i := r.Index(name)
	if i < 0 || i+1 >= len(r.steps) {
		return "", false
	}
	return r.steps[i+1].Name, true
}

// Before lists the steps preceding name, in order.
func (r *Registry) Before(name string) []string {
	i := r.Index(name)
	if i <= 0 {
		return nil
	}
	return r.Names()[:i]
}

func (r *Registry) TemplateFor(name string) string {
	if i := r.Index(name); i >= 0 {
		return r.steps[i].Template
	}
	return ""
}

func (r *Registry) Fields(name string) []string {
	if i := r.Index(name); i >= 0 {
		return r.steps[i].Fields
	}
	return nil
}
