package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuestionRouter_Route(t *testing.T) {
	router := NewQuestionRouter()

	tests := []struct {
		question string
		want     RouteKind
	}{
		{"What is the color code for a 220 ohm resistor?", RouteResistor},
		{"4.7k 电阻的色环是什么", RouteResistor},
		{"colour bands for 1k?", RouteResistor},
		{"请给我欧姆定律实验的电路图", RouteFigure},
		{"show me the schematic for this lab", RouteFigure},
		{"欧姆定律是什么", RouteRAG},
		{"how do I measure voltage with a multimeter", RouteRAG},
		{"", RouteRAG},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.want, router.Route(tt.question))
		})
	}
}
