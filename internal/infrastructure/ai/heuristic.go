package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/webcreatorLuke/roblox-code-bot/internal/domain"
	"github.com/webcreatorLuke/roblox-code-bot/internal/ports"
)

// heuristicProvider answers from local templates keyed by category. It keeps
// the app usable without credentials.
type heuristicProvider struct {
	model domain.ModelDefinition
}

func newHeuristicProvider(model domain.ModelDefinition) ports.Provider {
	return &heuristicProvider{model: model}
}

func (p *heuristicProvider) Name() string {
	return "heuristic"
}

func (p *heuristicProvider) Model() domain.ModelDefinition {
	return p.model
}

func (p *heuristicProvider) Generate(ctx context.Context, req ports.ProviderRequest) (ports.ProviderResponse, error) {
	if err := ctx.Err(); err != nil {
		return ports.ProviderResponse{}, err
	}
	tpl := templateFor(domain.Classify(req.Prompt))
	code := fmt.Sprintf("-- %s\n-- Offline template: configure a model for a tailored script.\n\n%s",
		oneLine(req.Prompt), tpl.code)
	return ports.ProviderResponse{
		Code:       code,
		ScriptType: string(tpl.kind),
		Location:   tpl.location,
		Raw:        "heuristic",
	}, nil
}

type luaTemplate struct {
	kind     domain.ArtifactKind
	location string
	code     string
}

func templateFor(category domain.Category) luaTemplate {
	switch category {
	case domain.CategoryGUI:
		return luaTemplate{domain.KindLocalScript, "StarterGui", guiTemplate}
	case domain.CategoryTool:
		return luaTemplate{domain.KindScript, "StarterPack.Tool", toolTemplate}
	case domain.CategoryGameMechanic:
		return luaTemplate{domain.KindLocalScript, "StarterPlayer.StarterCharacterScripts", mechanicTemplate}
	case domain.CategoryAnimation:
		return luaTemplate{domain.KindLocalScript, "StarterPlayer.StarterCharacterScripts", animationTemplate}
	case domain.CategorySound:
		return luaTemplate{domain.KindScript, "Workspace", soundTemplate}
	default:
		return luaTemplate{domain.KindScript, "ServerScriptService", serverTemplate}
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

const guiTemplate = `local Players = game:GetService("Players")
local player = Players.LocalPlayer

local screenGui = Instance.new("ScreenGui")
screenGui.ResetOnSpawn = false
screenGui.Parent = player:WaitForChild("PlayerGui")

local button = Instance.new("TextButton")
button.Size = UDim2.new(0, 200, 0, 50)
button.Position = UDim2.new(0.5, -100, 0.8, 0)
button.Text = "Click me"
button.Parent = screenGui

button.MouseButton1Click:Connect(function()
	print("Button clicked by " .. player.Name)
end)
`

const toolTemplate = `local tool = script.Parent

tool.Activated:Connect(function()
	local character = tool.Parent
	local humanoid = character and character:FindFirstChildOfClass("Humanoid")
	if humanoid then
		print(character.Name .. " used " .. tool.Name)
	end
end)
`

const mechanicTemplate = `local UserInputService = game:GetService("UserInputService")

local character = script.Parent
local humanoid = character:WaitForChild("Humanoid")

local canDoubleJump = false
local hasDoubleJumped = false

humanoid.StateChanged:Connect(function(_, newState)
	if newState == Enum.HumanoidStateType.Landed then
		canDoubleJump = false
		hasDoubleJumped = false
	elseif newState == Enum.HumanoidStateType.Freefall then
		canDoubleJump = true
	end
end)

UserInputService.JumpRequest:Connect(function()
	if canDoubleJump and not hasDoubleJumped then
		hasDoubleJumped = true
		humanoid:ChangeState(Enum.HumanoidStateType.Jumping)
	end
end)
`

const animationTemplate = `local character = script.Parent
local humanoid = character:WaitForChild("Humanoid")
local animator = humanoid:WaitForChild("Animator")

local animation = Instance.new("Animation")
animation.AnimationId = "rbxassetid://0" -- replace with your animation id

local track = animator:LoadAnimation(animation)
track:Play()
`

const soundTemplate = `local sound = Instance.new("Sound")
sound.SoundId = "rbxassetid://0" -- replace with your sound id
sound.Looped = true
sound.Volume = 0.5
sound.Parent = workspace

sound:Play()
`

const serverTemplate = `local Players = game:GetService("Players")

Players.PlayerAdded:Connect(function(player)
	print(player.Name .. " joined the game")
end)
`
