package delegate

import "fmt"

func errNoSubscriber(name string) error {
	return fmt.Errorf("delegate: subschema %q has no subscriber", name)
}
