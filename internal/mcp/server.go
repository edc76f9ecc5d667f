package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"appdna/internal/version"
)

// New assembles the stdio MCP server with every AppDNA tool registered
// against the given bridge client.
func New(client *Client) *server.MCPServer {
	s := server.NewMCPServer(
		"appdna",
		version.Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	listObjects := NewListDataObjectsTool(client)
	s.AddTool(listObjects.Definition(), listObjects.Handle)

	createObject := NewCreateDataObjectTool(client)
	s.AddTool(createObject.Definition(), createObject.Handle)

	listRoles := NewListRolesTool(client)
	s.AddTool(listRoles.Definition(), listRoles.Handle)

	addRole := NewAddRoleTool(client)
	s.AddTool(addRole.Definition(), addRole.Handle)

	updateRole := NewUpdateRoleTool(client)
	s.AddTool(updateRole.Definition(), updateRole.Handle)

	listLookupValues := NewListLookupValuesTool(client)
	s.AddTool(listLookupValues.Definition(), listLookupValues.Handle)

	addLookupValue := NewAddLookupValueTool(client)
	s.AddTool(addLookupValue.Definition(), addLookupValue.Handle)

	updateLookupValue := NewUpdateLookupValueTool(client)
	s.AddTool(updateLookupValue.Definition(), updateLookupValue.Handle)

	listStories := NewListUserStoriesTool(client)
	s.AddTool(listStories.Definition(), listStories.Handle)

	createStory := NewCreateUserStoryTool(client)
	s.AddTool(createStory.Definition(), createStory.Handle)

	modelStatus := NewModelStatusTool(client)
	s.AddTool(modelStatus.Definition(), modelStatus.Handle)

	executeCommand := NewExecuteCommandTool(client)
	s.AddTool(executeCommand.Definition(), executeCommand.Handle)

	return s
}

// ServeStdio runs the server over stdin/stdout until the client
// disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

// serverInstructions tells the calling agent what the AppDNA tools
// operate on and how mutations behave.
func serverInstructions() string {
	return `You have access to AppDNA, an application-model service.

AppDNA holds a JSON application model in memory: namespaces containing
data objects, lookup items, user stories, forms and reports. The tools
talk to the running AppDNA service over its local bridges.

## Working with the model

- Use get_model_status first if a tool reports a connection error or
  complains that no model is loaded.
- Mutations (create_data_object, add_role, update_role,
  add_lookup_value, update_lookup_value, create_user_story) change the
  in-memory model only. Nothing is written to disk until
  execute_command runs appdna.saveModel.
- Roles are lookup items on the 'Role' data object. add_role fails
  until a data object named 'Role' exists; create it with
  create_data_object (is_lookup: true) if needed.
- User stories must name an existing role and follow the form
  'As a [Role], I want to [view all|view|add|update|delete] [a|an|all]
  [object]'.

## Saving

Run execute_command with appdna.saveModel to persist changes, and
appdna.hasUnsavedChanges to check whether anything is dirty.`
}
