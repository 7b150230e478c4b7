package search

import "fmt"

// notFoundReply is what the model is told to answer when it lacks the information.
const notFoundReply = "Sorry, I could not find relevant information in the website you provided."

const contextPromptTemplate = `Based on the following information from the website:

%s

Answer this question: %s
If the information is not there, say "%s"`

const plainPromptTemplate = `Answer this question: %s
If you do not have relevant information, say "%s"`

// contextPrompt grounds the query in a retrieved passage.
func contextPrompt(passage, query string) string {
	return fmt.Sprintf(contextPromptTemplate, passage, query, notFoundReply)
}

// plainPrompt asks the query without any retrieved passage.
func plainPrompt(query string) string {
	return fmt.Sprintf(plainPromptTemplate, query, notFoundReply)
}
